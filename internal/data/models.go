package data

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrRecordNotFound    = errors.New("record not found")
	ErrDuplicateTitle    = errors.New("duplicate movie title")
	ErrDuplicateUsername = errors.New("duplicate username")
)

type Models struct {
	Movies interface {
		Insert(movie *Movie) error
		GetAll() ([]*Movie, error)
		GetByTitle(title string) (*Movie, error)
		Update(title string, movie *Movie) error
		Delete(title string) error
		GetAllWithRatings() ([]*MovieWithRating, error)
		GetWithRatings(title string) ([]*MovieWithRating, error)
	}
	Users interface {
		Insert(user *User) error
		GetByUsername(username string) (*User, error)
	}
	Reviews interface {
		Insert(review *Review) error
		GetAll() ([]*Review, error)
	}
}

func NewModels(db *mongo.Database) Models {
	return Models{
		Movies:  MovieModel{Collection: db.Collection("movies")},
		Users:   UserModel{Collection: db.Collection("users")},
		Reviews: ReviewModel{Collection: db.Collection("reviews")},
	}
}

// EnsureIndexes 在启动时创建 username 和 title 的唯一索引
// 并发写入同一个键时靠这两个索引兜底，冲突以重复键错误的形式返回
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("users").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = db.Collection("movies").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "title", Value: 1}},
		Options: options.Index().SetUnique(true),
	})

	return err
}

// defaultTimeout 单次数据库操作的超时时间
const defaultTimeout = 3 * time.Second
