// internal/domain/category/repository_port.go
package category

import "context"

type Repository interface {
	GetByID(ctx context.Context, id string) (Category, error)
	ListAll(ctx context.Context) ([]Category, error)
	ListChildren(ctx context.Context, parentID string) ([]Category, error)
}
