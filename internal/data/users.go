package data

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// AnonymousUser 表示未认证的访客
var AnonymousUser = &User{}

// User 用户结构体，password 只存哈希，永远不会被序列化出去
type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name     string             `bson:"name" json:"name"`
	Username string             `bson:"username" json:"username"`
	Password password           `bson:"password" json:"-"`
}

// IsAnonymous 检查用户是否为匿名访客
func (u *User) IsAnonymous() bool {
	return u == AnonymousUser
}

// password 类型同时保存明文指针和哈希，明文只在内存中短暂存在
type password struct {
	plaintext *string
	Hash      []byte `bson:"hash"`
}

// Set 计算明文密码的 bcrypt 哈希
func (p *password) Set(plaintextPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintextPassword), 12)
	if err != nil {
		return err
	}

	p.plaintext = &plaintextPassword
	p.Hash = hash

	return nil
}

// Matches 检查明文密码是否与存储的哈希匹配
func (p *password) Matches(plaintextPassword string) (bool, error) {
	err := bcrypt.CompareHashAndPassword(p.Hash, []byte(plaintextPassword))
	if err != nil {
		switch {
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			return false, nil
		default:
			return false, err
		}
	}

	return true, nil
}

// UserModel 用户模型类型
type UserModel struct {
	Collection *mongo.Collection
}

// Insert 新增一个用户，username 撞唯一索引时返回 ErrDuplicateUsername
func (m UserModel) Insert(user *User) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	result, err := m.Collection.InsertOne(ctx, user)
	if err != nil {
		switch {
		case mongo.IsDuplicateKeyError(err):
			return ErrDuplicateUsername
		default:
			return err
		}
	}

	if id, ok := result.InsertedID.(primitive.ObjectID); ok {
		user.ID = id
	}

	return nil
}

// GetByUsername 根据用户名查找用户
func (m UserModel) GetByUsername(username string) (*User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var user User

	err := m.Collection.FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return &user, nil
}
