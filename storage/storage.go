package storage

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azqueue"

	"taskdeck-api/domain"
)

// aztables transaction batches are capped at 100 actions per partition.
const deleteBatchSize = 100

// Storage provides access to the underlying persistence mechanisms: one
// table per entity kind plus the activity queue.
type Storage struct {
	userTable     *aztables.Client
	projectTable  *aztables.Client
	taskTable     *aztables.Client
	activityQueue *azqueue.QueueClient
}

// New creates a Storage instance from the given connection string.
func New(connStr, usersTable, projectsTable, tasksTable, activityQueue string) (*Storage, error) {
	tablesClientOptions := aztables.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Retry: policy.RetryOptions{
				MaxRetries:    3,
				TryTimeout:    time.Minute * 3,
				RetryDelay:    time.Second * 1,
				MaxRetryDelay: time.Second * 15,
				StatusCodes:   []int{408, 429, 500, 502, 503, 504},
			},
		},
	}
	svc, err := aztables.NewServiceClientFromConnectionString(connStr, &tablesClientOptions)
	if err != nil {
		return nil, err
	}
	queueClientOptions := azqueue.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Retry: policy.RetryOptions{
				MaxRetries:    5,
				TryTimeout:    time.Minute * 5,
				RetryDelay:    time.Second * 1,
				MaxRetryDelay: time.Second * 60,
				StatusCodes:   []int{408, 429, 500, 502, 503, 504},
			},
		},
	}
	q, err := azqueue.NewQueueClientFromConnectionString(connStr, activityQueue, &queueClientOptions)
	if err != nil {
		return nil, err
	}
	return &Storage{
		userTable:     svc.NewClient(usersTable),
		projectTable:  svc.NewClient(projectsTable),
		taskTable:     svc.NewClient(tasksTable),
		activityQueue: q,
	}, nil
}

// Init creates the tables and the activity queue, tolerating ones that
// already exist.
func (s *Storage) Init(ctx context.Context) error {
	for _, table := range []*aztables.Client{s.userTable, s.projectTable, s.taskTable} {
		if _, err := table.CreateTable(ctx, nil); err != nil {
			var respErr *azcore.ResponseError
			if !(errors.As(err, &respErr) && respErr.ErrorCode == string(aztables.TableAlreadyExists)) {
				return err
			}
		}
	}
	if _, err := s.activityQueue.Create(ctx, nil); err != nil {
		var respErr *azcore.ResponseError
		if !(errors.As(err, &respErr) && respErr.ErrorCode == "QueueAlreadyExists") {
			return err
		}
	}
	return nil
}

// GetUser retrieves a user record by email, or nil when absent.
func (s *Storage) GetUser(ctx context.Context, email string) (*domain.User, error) {
	resp, err := s.userTable.GetEntity(ctx, email, email, nil)
	if err != nil {
		if isStatus(err, http.StatusNotFound) {
			return nil, nil
		}
		return nil, err
	}
	var ent userEntity
	if err := json.Unmarshal(resp.Value, &ent); err != nil {
		return nil, err
	}
	return ent.toDomain()
}

func (s *Storage) UserExists(ctx context.Context, email string) (bool, error) {
	u, err := s.GetUser(ctx, email)
	if err != nil {
		return false, err
	}
	return u != nil, nil
}

// InsertUser stores a new user record. The email doubles as the entity key,
// so a concurrent registration of the same address surfaces as ErrEmailTaken.
func (s *Storage) InsertUser(ctx context.Context, u domain.User) error {
	payload, err := json.Marshal(newUserEntity(u))
	if err != nil {
		return err
	}
	if _, err := s.userTable.AddEntity(ctx, payload, nil); err != nil {
		if isStatus(err, http.StatusConflict) {
			return domain.ErrEmailTaken
		}
		return err
	}
	return nil
}

// GetProject retrieves a project by id, or nil when absent. Projects are
// partitioned by owner, so the lookup filters on the row key.
func (s *Storage) GetProject(ctx context.Context, id string) (*domain.Project, error) {
	filter := "RowKey eq '" + escapeFilterValue(id) + "'"
	pager := s.projectTable.NewListEntitiesPager(&aztables.ListEntitiesOptions{Filter: &filter})
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, raw := range resp.Entities {
			var ent projectEntity
			if err := json.Unmarshal(raw, &ent); err != nil {
				return nil, err
			}
			p, err := ent.toDomain()
			if err != nil {
				return nil, err
			}
			return p, nil
		}
	}
	return nil, nil
}

// ListProjects returns one page of the owner's projects, newest first,
// optionally filtered by case-insensitive title substring. The second return
// value is the total number of matches before pagination.
func (s *Storage) ListProjects(ctx context.Context, ownerEmail, search string, page, pageSize int) ([]domain.Project, int, error) {
	filter := "PartitionKey eq '" + escapeFilterValue(ownerEmail) + "'"
	pager := s.projectTable.NewListEntitiesPager(&aztables.ListEntitiesOptions{Filter: &filter})
	projects := []domain.Project{}
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, 0, err
		}
		for _, raw := range resp.Entities {
			var ent projectEntity
			if err := json.Unmarshal(raw, &ent); err != nil {
				return nil, 0, err
			}
			p, err := ent.toDomain()
			if err != nil {
				return nil, 0, err
			}
			projects = append(projects, *p)
		}
	}
	matched := filterProjects(projects, search)
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	lo, hi := pageBounds(len(matched), page, pageSize)
	return matched[lo:hi], len(matched), nil
}

func (s *Storage) InsertProject(ctx context.Context, p domain.Project) error {
	payload, err := json.Marshal(newProjectEntity(p))
	if err != nil {
		return err
	}
	_, err = s.projectTable.AddEntity(ctx, payload, nil)
	return err
}

func (s *Storage) UpdateProject(ctx context.Context, p domain.Project) error {
	payload, err := json.Marshal(newProjectEntity(p))
	if err != nil {
		return err
	}
	et := azcore.ETagAny
	_, err = s.projectTable.UpdateEntity(ctx, payload, &aztables.UpdateEntityOptions{
		IfMatch:    &et,
		UpdateMode: aztables.UpdateModeReplace,
	})
	return err
}

// DeleteProject removes the project and cascades to its tasks. Tasks share
// the project id as partition key, so each cascade batch is atomic.
func (s *Storage) DeleteProject(ctx context.Context, p domain.Project) error {
	tasks, err := s.ListTasks(ctx, p.ID)
	if err != nil {
		return err
	}
	for start := 0; start < len(tasks); start += deleteBatchSize {
		end := start + deleteBatchSize
		if end > len(tasks) {
			end = len(tasks)
		}
		actions := make([]aztables.TransactionAction, 0, end-start)
		for _, t := range tasks[start:end] {
			payload, err := json.Marshal(aztables.Entity{PartitionKey: t.ProjectID, RowKey: t.ID})
			if err != nil {
				return err
			}
			actions = append(actions, aztables.TransactionAction{
				ActionType: aztables.TransactionTypeDelete,
				Entity:     payload,
			})
		}
		if _, err := s.taskTable.SubmitTransaction(ctx, actions, nil); err != nil {
			return err
		}
	}
	et := azcore.ETagAny
	_, err = s.projectTable.DeleteEntity(ctx, p.OwnerEmail, p.ID, &aztables.DeleteEntityOptions{IfMatch: &et})
	return err
}

// GetTask retrieves a task by id, or nil when absent. Tasks are partitioned
// by project, so the lookup filters on the row key.
func (s *Storage) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	filter := "RowKey eq '" + escapeFilterValue(id) + "'"
	pager := s.taskTable.NewListEntitiesPager(&aztables.ListEntitiesOptions{Filter: &filter})
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, raw := range resp.Entities {
			var ent taskEntity
			if err := json.Unmarshal(raw, &ent); err != nil {
				return nil, err
			}
			t, err := ent.toDomain()
			if err != nil {
				return nil, err
			}
			return t, nil
		}
	}
	return nil, nil
}

// ListTasks returns all tasks of a project, oldest first.
func (s *Storage) ListTasks(ctx context.Context, projectID string) ([]domain.Task, error) {
	filter := "PartitionKey eq '" + escapeFilterValue(projectID) + "'"
	pager := s.taskTable.NewListEntitiesPager(&aztables.ListEntitiesOptions{Filter: &filter})
	tasks := []domain.Task{}
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, raw := range resp.Entities {
			var ent taskEntity
			if err := json.Unmarshal(raw, &ent); err != nil {
				return nil, err
			}
			t, err := ent.toDomain()
			if err != nil {
				return nil, err
			}
			tasks = append(tasks, *t)
		}
	}
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
	})
	return tasks, nil
}

func (s *Storage) InsertTask(ctx context.Context, t domain.Task) error {
	payload, err := json.Marshal(newTaskEntity(t))
	if err != nil {
		return err
	}
	_, err = s.taskTable.AddEntity(ctx, payload, nil)
	return err
}

func (s *Storage) UpdateTask(ctx context.Context, t domain.Task) error {
	payload, err := json.Marshal(newTaskEntity(t))
	if err != nil {
		return err
	}
	et := azcore.ETagAny
	_, err = s.taskTable.UpdateEntity(ctx, payload, &aztables.UpdateEntityOptions{
		IfMatch:    &et,
		UpdateMode: aztables.UpdateModeReplace,
	})
	return err
}

func (s *Storage) DeleteTask(ctx context.Context, t domain.Task) error {
	et := azcore.ETagAny
	_, err := s.taskTable.DeleteEntity(ctx, t.ProjectID, t.ID, &aztables.DeleteEntityOptions{IfMatch: &et})
	return err
}

// EnqueueActivity publishes one activity record to the activity queue.
func (s *Storage) EnqueueActivity(ctx context.Context, act domain.Activity) error {
	data, err := json.Marshal(act)
	if err != nil {
		return err
	}
	_, err = s.activityQueue.EnqueueMessage(ctx, string(data), nil)
	return err
}

func isStatus(err error, status int) bool {
	var respErr *azcore.ResponseError
	return errors.As(err, &respErr) && respErr.StatusCode == status
}

// escapeFilterValue doubles single quotes for use inside an OData filter literal.
func escapeFilterValue(v string) string {
	return strings.ReplaceAll(v, "'", "''")
}

func filterProjects(projects []domain.Project, search string) []domain.Project {
	if search == "" {
		return projects
	}
	needle := strings.ToLower(search)
	matched := make([]domain.Project, 0, len(projects))
	for _, p := range projects {
		if strings.Contains(strings.ToLower(p.Title), needle) {
			matched = append(matched, p)
		}
	}
	return matched
}

// pageBounds clamps a zero-indexed page window to the collection size.
func pageBounds(total, page, pageSize int) (int, int) {
	if page < 0 {
		page = 0
	}
	if pageSize <= 0 {
		return 0, 0
	}
	lo := page * pageSize
	if lo > total {
		lo = total
	}
	hi := lo + pageSize
	if hi > total {
		hi = total
	}
	return lo, hi
}
