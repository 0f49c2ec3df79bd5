package data

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Genres 电影允许的八种类型
var Genres = []string{"Action", "Comedy", "Drama", "Fantasy", "Horror", "Mystery", "Thriller", "Western"}

// Movie 电影结构体，title 上有唯一索引
type Movie struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Title        string             `bson:"title" json:"title"`
	YearReleased string             `bson:"yearReleased" json:"yearReleased"`
	Genre        string             `bson:"genre" json:"genre"`
	Actors       []string           `bson:"actors" json:"actors"`
	ImgURL       string             `bson:"imgURL,omitempty" json:"imgURL,omitempty"`
}

// MovieWithRating 聚合视图：电影连同它的影评和平均分
// 没有影评时 averageRating 为 null，而不是 0
type MovieWithRating struct {
	Movie         `bson:",inline"`
	Reviews       []Review `bson:"reviews" json:"reviews"`
	AverageRating *float64 `bson:"averageRating" json:"averageRating"`
}

// MovieModel 电影模型类型
type MovieModel struct {
	Collection *mongo.Collection
}

// Insert 新增一部电影，title 撞唯一索引时返回 ErrDuplicateTitle
func (m MovieModel) Insert(movie *Movie) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	result, err := m.Collection.InsertOne(ctx, movie)
	if err != nil {
		switch {
		case mongo.IsDuplicateKeyError(err):
			return ErrDuplicateTitle
		default:
			return err
		}
	}

	if id, ok := result.InsertedID.(primitive.ObjectID); ok {
		movie.ID = id
	}

	return nil
}

// GetAll 返回所有电影
func (m MovieModel) GetAll() ([]*Movie, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	cursor, err := m.Collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	movies := []*Movie{}

	err = cursor.All(ctx, &movies)
	if err != nil {
		return nil, err
	}

	return movies, nil
}

// GetByTitle 根据标题查找电影
func (m MovieModel) GetByTitle(title string) (*Movie, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var movie Movie

	err := m.Collection.FindOne(ctx, bson.M{"title": title}).Decode(&movie)
	if err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return &movie, nil
}

// Update 按标题替换 title、yearReleased、genre、actors 四个字段
// imgURL 不在更新范围内；标题不存在时匹配零条，不报错
func (m MovieModel) Update(title string, movie *Movie) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"title":        movie.Title,
		"yearReleased": movie.YearReleased,
		"genre":        movie.Genre,
		"actors":       movie.Actors,
	}}

	_, err := m.Collection.UpdateOne(ctx, bson.M{"title": title}, update)
	if err != nil {
		switch {
		case mongo.IsDuplicateKeyError(err):
			return ErrDuplicateTitle
		default:
			return err
		}
	}

	return nil
}

// Delete 按标题删除电影，没有匹配到任何文档时返回 ErrRecordNotFound
func (m MovieModel) Delete(title string) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	result, err := m.Collection.DeleteOne(ctx, bson.M{"title": title})
	if err != nil {
		return err
	}

	if result.DeletedCount == 0 {
		return ErrRecordNotFound
	}

	return nil
}

// ratingPipeline 构造评分聚合管道：
// 先按条件筛选电影，再把同名影评 lookup 进来，最后用 $avg 算平均分
// $avg 会忽略缺失和非数值的 rating，一条影评都没有时结果为 null
func ratingPipeline(match bson.M, sortByRating bool) mongo.Pipeline {
	pipeline := mongo.Pipeline{}

	if match != nil {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: match}})
	}

	pipeline = append(pipeline,
		bson.D{{Key: "$lookup", Value: bson.M{
			"from":         "reviews",
			"localField":   "title",
			"foreignField": "title",
			"as":           "reviews",
		}}},
		bson.D{{Key: "$addFields", Value: bson.M{
			"averageRating": bson.M{"$avg": "$reviews.rating"},
		}}},
	)

	// 降序排序时 null 会排在所有数值之后，没有影评的电影垫底
	if sortByRating {
		pipeline = append(pipeline, bson.D{{Key: "$sort", Value: bson.M{"averageRating": -1}}})
	}

	return pipeline
}

// GetAllWithRatings 返回所有电影的聚合视图，按平均分降序
func (m MovieModel) GetAllWithRatings() ([]*MovieWithRating, error) {
	return m.aggregate(ratingPipeline(nil, true))
}

// GetWithRatings 返回单部电影的聚合视图
func (m MovieModel) GetWithRatings(title string) ([]*MovieWithRating, error) {
	return m.aggregate(ratingPipeline(bson.M{"title": title}, false))
}

// aggregate 执行聚合管道并解码结果
func (m MovieModel) aggregate(pipeline mongo.Pipeline) ([]*MovieWithRating, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	cursor, err := m.Collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	movies := []*MovieWithRating{}

	err = cursor.All(ctx, &movies)
	if err != nil {
		return nil, err
	}

	return movies, nil
}
