package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jmalik/taskly-backend/internal/models"
)

type TaskService struct {
	tasks *mongo.Collection
}

func NewTaskService(db *mongo.Database) *TaskService {
	return &TaskService{tasks: db.Collection("tasks")}
}

// TaskListOptions narrows and orders an owner-scoped listing. Zero values
// impose nothing: no completion filter, no limit, no skip, no sort.
type TaskListOptions struct {
	Completed *bool
	Limit     int64
	Skip      int64
	SortField string
	SortDesc  bool
}

// TaskUpdate carries the allow-listed task fields; nil means "leave
// unchanged".
type TaskUpdate struct {
	Description *string
	Completed   *bool
}

func (s *TaskService) Create(ctx context.Context, owner primitive.ObjectID, description string, completed bool) (*models.Task, error) {
	now := time.Now().UTC()
	task := &models.Task{
		ID:          primitive.NewObjectID(),
		CreatedAt:   now,
		UpdatedAt:   now,
		Description: strings.TrimSpace(description),
		Completed:   completed,
		Owner:       owner,
	}

	if _, err := s.tasks.InsertOne(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// List returns the owner's tasks, filtered and ordered per opts.
func (s *TaskService) List(ctx context.Context, owner primitive.ObjectID, opts TaskListOptions) ([]models.Task, error) {
	filter := bson.M{"owner": owner}
	if opts.Completed != nil {
		filter["completed"] = *opts.Completed
	}

	findOpts := options.Find()
	if opts.SortField != "" {
		dir := 1
		if opts.SortDesc {
			dir = -1
		}
		findOpts.SetSort(bson.D{{Key: opts.SortField, Value: dir}})
	}
	if opts.Limit > 0 {
		findOpts.SetLimit(opts.Limit)
	}
	if opts.Skip > 0 {
		findOpts.SetSkip(opts.Skip)
	}

	cur, err := s.tasks.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	tasks := []models.Task{}
	for cur.Next(ctx) {
		var t models.Task
		if err := cur.Decode(&t); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, cur.Err()
}

// GetByID fetches one task scoped to its owner. A task that exists but
// belongs to someone else is reported the same as a missing one.
func (s *TaskService) GetByID(ctx context.Context, owner, id primitive.ObjectID) (*models.Task, error) {
	var task models.Task
	err := s.tasks.FindOne(ctx, bson.M{"_id": id, "owner": owner}).Decode(&task)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (s *TaskService) Update(ctx context.Context, owner, id primitive.ObjectID, upd TaskUpdate) (*models.Task, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.Description != nil {
		set["description"] = strings.TrimSpace(*upd.Description)
	}
	if upd.Completed != nil {
		set["completed"] = *upd.Completed
	}

	after := options.After
	var task models.Task
	err := s.tasks.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "owner": owner},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(after),
	).Decode(&task)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (s *TaskService) Delete(ctx context.Context, owner, id primitive.ObjectID) (*models.Task, error) {
	var task models.Task
	err := s.tasks.FindOneAndDelete(ctx, bson.M{"_id": id, "owner": owner}).Decode(&task)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}
