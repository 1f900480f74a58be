package graph

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"tricy/internal/models"
	"tricy/internal/repositories/interfaces"
	"tricy/internal/utils"
	"tricy/pkg/database"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

const (
	createUserQuery = `
CREATE (u:User {
	user_id: $user_id,
	name: $name,
	email: $email,
	phone_number: $phone_number,
	password_hash: $password_hash,
	role: $role,
	created_at: $created_at
})
RETURN u`

	getUserQuery        = `MATCH (u:User {user_id: $user_id}) RETURN u LIMIT 1`
	getUserByEmailQuery = `MATCH (u:User {email: $email}) RETURN u LIMIT 1`
	listUsersQuery      = `MATCH (u:User) RETURN u ORDER BY u.created_at DESC SKIP $skip LIMIT $limit`

	deleteUserQuery = `
MATCH (u:User {user_id: $user_id})
DETACH DELETE u
RETURN count(*) AS deleted`
)

// updatableUserFields guards the dynamic SET clause built by Update.
var updatableUserFields = map[string]bool{
	"name":            true,
	"email":           true,
	"phone_number":    true,
	"password_hash":   true,
	"device_token":    true,
	"device_platform": true,
}

type userRepository struct {
	db *database.GraphDB
}

func NewUserRepository(db *database.GraphDB) interfaces.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	params := map[string]any{
		"user_id":       user.UserID,
		"name":          user.Name,
		"email":         user.Email,
		"phone_number":  user.PhoneNumber,
		"password_hash": user.PasswordHash,
		"role":          string(user.Role),
		"created_at":    user.CreatedAt,
	}

	_, err := r.db.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, createUserQuery, params)
		if err != nil {
			return nil, err
		}
		return result.Consume(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, userID string) (*models.User, error) {
	return r.getOne(ctx, getUserQuery, map[string]any{"user_id": userID})
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, getUserByEmailQuery, map[string]any{"email": email})
}

func (r *userRepository) getOne(ctx context.Context, query string, params map[string]any) (*models.User, error) {
	result, err := r.db.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return single(ctx, tx, query, params, "u", userFromProps)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	user := result.(*models.User)
	if user == nil {
		return nil, utils.NotFoundError("user")
	}
	return user, nil
}

func (r *userRepository) List(ctx context.Context, params *utils.PaginationParams) ([]*models.User, error) {
	result, err := r.db.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return collect(ctx, tx, listUsersQuery, map[string]any{
			"skip":  int64(params.Skip),
			"limit": int64(params.Limit),
		}, "u", userFromProps)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return result.([]*models.User), nil
}

func (r *userRepository) Update(ctx context.Context, userID string, updates map[string]interface{}) (*models.User, error) {
	query, params, err := buildUserUpdate(userID, updates)
	if err != nil {
		return nil, err
	}

	result, err := r.db.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return single(ctx, tx, query, params, "u", userFromProps)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	user := result.(*models.User)
	if user == nil {
		return nil, utils.NotFoundError("user")
	}
	return user, nil
}

func (r *userRepository) Delete(ctx context.Context, userID string) error {
	result, err := r.db.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, deleteUserQuery, map[string]any{"user_id": userID})
		if err != nil {
			return nil, err
		}
		record, err := res.Single(ctx)
		if err != nil {
			return nil, err
		}
		deleted, _ := record.Get("deleted")
		return deleted, nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	if deleted, _ := result.(int64); deleted == 0 {
		return utils.NotFoundError("user")
	}
	return nil
}

// buildUserUpdate renders a SET clause for the whitelisted keys of updates.
// Keys are sorted so the generated Cypher is stable.
func buildUserUpdate(userID string, updates map[string]interface{}) (string, map[string]any, error) {
	keys := make([]string, 0, len(updates))
	for key := range updates {
		if !updatableUserFields[key] {
			return "", nil, utils.ValidationError(fmt.Sprintf("field %q cannot be updated", key))
		}
		keys = append(keys, key)
	}
	if len(keys) == 0 {
		return "", nil, utils.ValidationError("no fields to update")
	}
	sort.Strings(keys)

	params := map[string]any{"user_id": userID}
	assignments := make([]string, 0, len(keys))
	for _, key := range keys {
		assignments = append(assignments, fmt.Sprintf("u.%s = $%s", key, key))
		params[key] = updates[key]
	}

	query := fmt.Sprintf("MATCH (u:User {user_id: $user_id}) SET %s RETURN u", strings.Join(assignments, ", "))
	return query, params, nil
}
