package data

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Review 影评结构体，title 只是和电影标题相同的普通字符串，不是外键
type Review struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Title        string             `bson:"title" json:"title"`
	ReviewerName string             `bson:"reviewerName" json:"reviewerName"`
	Review       string             `bson:"review" json:"review"`
	Rating       float64            `bson:"rating" json:"rating"`
}

// ReviewModel 影评模型类型
type ReviewModel struct {
	Collection *mongo.Collection
}

// Insert 新增一条影评
func (m ReviewModel) Insert(review *Review) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	result, err := m.Collection.InsertOne(ctx, review)
	if err != nil {
		return err
	}

	if id, ok := result.InsertedID.(primitive.ObjectID); ok {
		review.ID = id
	}

	return nil
}

// GetAll 返回所有影评，不按电影过滤
func (m ReviewModel) GetAll() ([]*Review, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	cursor, err := m.Collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	reviews := []*Review{}

	err = cursor.All(ctx, &reviews)
	if err != nil {
		return nil, err
	}

	return reviews, nil
}
