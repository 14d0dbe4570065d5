// internal/adapters/out/firestore/category_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	catdom "emporia/internal/domain/category"
)

const categoriesCollection = "categories"

// CategoryRepositoryFS implements category.Repository using Firestore.
type CategoryRepositoryFS struct {
	Client *firestore.Client
}

func NewCategoryRepositoryFS(client *firestore.Client) *CategoryRepositoryFS {
	return &CategoryRepositoryFS{Client: client}
}

var _ catdom.Repository = (*CategoryRepositoryFS)(nil)

func (r *CategoryRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection(categoriesCollection)
}

func (r *CategoryRepositoryFS) GetByID(ctx context.Context, id string) (catdom.Category, error) {
	if r == nil || r.Client == nil {
		return catdom.Category{}, errors.New("category_repository_fs: firestore client is nil")
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return catdom.Category{}, catdom.ErrInvalidCategory
	}

	snap, err := r.col().Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return catdom.Category{}, catdom.ErrNotFound
	}
	if err != nil {
		return catdom.Category{}, err
	}
	return categoryFromSnapshot(snap), nil
}

func (r *CategoryRepositoryFS) ListAll(ctx context.Context) ([]catdom.Category, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("category_repository_fs: firestore client is nil")
	}

	iter := r.col().OrderBy("createdAt", firestore.Desc).Documents(ctx)
	defer iter.Stop()

	var out []catdom.Category
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, categoryFromSnapshot(doc))
	}
	return out, nil
}

func (r *CategoryRepositoryFS) ListChildren(ctx context.Context, parentID string) ([]catdom.Category, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("category_repository_fs: firestore client is nil")
	}

	parentID = strings.TrimSpace(parentID)
	if parentID == "" {
		return nil, catdom.ErrInvalidCategory
	}

	iter := r.col().Where("parentCategoryId", "==", parentID).Documents(ctx)
	defer iter.Stop()

	var out []catdom.Category
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, categoryFromSnapshot(doc))
	}
	return out, nil
}

func categoryFromSnapshot(snap *firestore.DocumentSnapshot) catdom.Category {
	raw := snap.Data()
	if raw == nil {
		return catdom.Category{ID: snap.Ref.ID}
	}

	c := catdom.Category{
		ID:          snap.Ref.ID,
		Name:        asString(raw["name"]),
		Description: asString(raw["description"]),
		Image:       asString(raw["image"]),
	}
	if p := strings.TrimSpace(asString(raw["parentCategoryId"])); p != "" {
		c.ParentCategoryID = &p
	}
	if t, ok := asTime(raw["createdAt"]); ok {
		c.CreatedAt = t
	}
	return c
}
