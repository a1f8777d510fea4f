package mongodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/anoixa/photo-share/database/models"
	"github.com/anoixa/photo-share/database/repo"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// PhotoRepository 图片集合，评论作为内嵌数组，单文档更新天然原子
type PhotoRepository struct {
	coll *mongo.Collection
}

var _ repo.PhotoRepository = (*PhotoRepository)(nil)

func NewPhotoRepository(coll *mongo.Collection) *PhotoRepository {
	return &PhotoRepository{coll: coll}
}

var byDate = options.Find().SetSort(bson.D{{Key: "date_time", Value: 1}, {Key: "_id", Value: 1}})

func (r *PhotoRepository) find(ctx context.Context, filter bson.M) ([]*models.Photo, error) {
	cursor, err := r.coll.Find(ctx, filter, byDate)
	if err != nil {
		return nil, fmt.Errorf("failed to find photos: %w", err)
	}
	var photos []*models.Photo
	if err := cursor.All(ctx, &photos); err != nil {
		return nil, fmt.Errorf("failed to decode photos: %w", err)
	}
	return photos, nil
}

func (r *PhotoRepository) FindByUser(ctx context.Context, userID string) ([]*models.Photo, error) {
	return r.find(ctx, bson.M{"user_id": userID})
}

func (r *PhotoRepository) FindByID(ctx context.Context, id string) (*models.Photo, error) {
	var photo models.Photo
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&photo); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repo.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find photo %s: %w", id, err)
	}
	return &photo, nil
}

func (r *PhotoRepository) Insert(ctx context.Context, photo *models.Photo) error {
	// nil 切片会被编码为 null，之后 $push 会失败
	if photo.Comments == nil {
		photo.Comments = []models.Comment{}
	}
	if _, err := r.coll.InsertOne(ctx, photo); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repo.ErrDuplicate
		}
		return fmt.Errorf("failed to insert photo: %w", err)
	}
	return nil
}

func (r *PhotoRepository) DeleteByID(ctx context.Context, id string) error {
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete photo %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *PhotoRepository) DeleteManyByUser(ctx context.Context, userID string) (int64, error) {
	result, err := r.coll.DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, fmt.Errorf("failed to delete photos of user %s: %w", userID, err)
	}
	return result.DeletedCount, nil
}

// PullCommentsByAuthor 返回移除的评论数
func (r *PhotoRepository) PullCommentsByAuthor(ctx context.Context, userID string) (int64, error) {
	filter := bson.M{"comments.user_id": userID}
	removed, err := r.countCommentsBy(ctx, filter, userID)
	if err != nil {
		return 0, err
	}

	_, err = r.coll.UpdateMany(ctx, filter,
		bson.M{"$pull": bson.M{"comments": bson.M{"user_id": userID}}},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to pull comments by author %s: %w", userID, err)
	}
	return removed, nil
}

// countCommentsBy 统计作者在所有图片中的评论条数
func (r *PhotoRepository) countCommentsBy(ctx context.Context, filter bson.M, userID string) (int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$project", Value: bson.M{
			"n": bson.M{"$size": bson.M{"$filter": bson.M{
				"input": "$comments",
				"cond":  bson.M{"$eq": bson.A{"$$this.user_id", userID}},
			}}},
		}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$n"}}}},
	}
	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("failed to count comments by author %s: %w", userID, err)
	}
	var rows []struct {
		Total int64 `bson:"total"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return 0, fmt.Errorf("failed to decode comment count: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Total, nil
}

func (r *PhotoRepository) AppendComment(ctx context.Context, photoID string, comment *models.Comment) error {
	comment.PhotoID = photoID
	result, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": photoID},
		bson.M{"$push": bson.M{"comments": comment}},
	)
	if err != nil {
		return fmt.Errorf("failed to append comment to photo %s: %w", photoID, err)
	}
	if result.MatchedCount == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *PhotoRepository) RemoveComment(ctx context.Context, photoID, commentID string) error {
	result, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": photoID, "comments._id": commentID},
		bson.M{"$pull": bson.M{"comments": bson.M{"_id": commentID}}},
	)
	if err != nil {
		return fmt.Errorf("failed to remove comment %s: %w", commentID, err)
	}
	if result.MatchedCount == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *PhotoRepository) ListAll(ctx context.Context) ([]*models.Photo, error) {
	return r.find(ctx, bson.M{})
}

func (r *PhotoRepository) Count(ctx context.Context) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{})
}
