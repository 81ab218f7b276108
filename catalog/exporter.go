// Package catalog exports shops and their products from the backend into a
// local YAML tree, optionally committing each export to a git repository so
// catalog changes stay reviewable over time.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/crmarques/storectl/api"
	"github.com/crmarques/storectl/faults"
	"github.com/crmarques/storectl/resource"
	"github.com/crmarques/storectl/storefront"
	"github.com/crmarques/storectl/yamlutil"
)

// Client is the slice of the REST client the exporter needs.
type Client interface {
	Get(ctx context.Context, path string, opts *api.RequestOptions) (resource.Value, error)
}

// GitOptions enables committing exports to the catalog directory's git
// repository. The repository is initialized on first use.
type GitOptions struct {
	AuthorName  string
	AuthorEmail string
}

// Exporter writes one shop per directory under the base directory:
// shop.yaml with the shop itself and products/<slug>.yaml per product.
type Exporter struct {
	client  Client
	baseDir string
	git     *GitOptions
}

func NewExporter(client Client, baseDir string, git *GitOptions) (*Exporter, error) {
	baseDir = strings.TrimSpace(baseDir)
	if baseDir == "" {
		return nil, faults.NewTypedError(faults.ValidationError, "catalog.base-dir is required", nil)
	}
	return &Exporter{
		client:  client,
		baseDir: filepath.Clean(baseDir),
		git:     git,
	}, nil
}

// ExportShop fetches a shop and all of its products and writes them to the
// catalog tree. It returns the number of files written.
func (e *Exporter) ExportShop(ctx context.Context, shopID string) (int, error) {
	shopValue, err := e.client.Get(ctx, storefront.ShopPath(shopID), nil)
	if err != nil {
		return 0, err
	}
	shop, err := resource.AsFields(shopValue)
	if err != nil {
		return 0, err
	}

	shopDir := filepath.Join(e.baseDir, shopDirName(shop, shopID))
	if err := os.MkdirAll(filepath.Join(shopDir, "products"), 0o755); err != nil {
		return 0, internalError("failed to create catalog directory", err)
	}

	written := 0
	if err := e.writeYAML(filepath.Join(shopDir, "shop.yaml"), shop); err != nil {
		return written, err
	}
	written++

	productCount, err := e.exportProducts(ctx, shopID, shopDir)
	if err != nil {
		return written, err
	}
	written += productCount

	if e.git != nil {
		message := fmt.Sprintf("catalog: export shop %s", shopID)
		if _, err := e.commit(message); err != nil {
			return written, err
		}
	}
	return written, nil
}

func (e *Exporter) exportProducts(ctx context.Context, shopID string, shopDir string) (int, error) {
	listValue, err := e.client.Get(ctx, storefront.ProductsPath(shopID), nil)
	if err != nil {
		return 0, err
	}
	if listValue == nil {
		return 0, nil
	}

	items, ok := listValue.([]any)
	if !ok {
		return 0, faults.NewTypedError(
			faults.ValidationError,
			fmt.Sprintf("expected product list, got %T", listValue),
			nil,
		)
	}

	written := 0
	for index, item := range items {
		product, err := resource.AsFields(item)
		if err != nil {
			return written, err
		}

		name := productFileName(product, index)
		if err := e.writeYAML(filepath.Join(shopDir, "products", name), product); err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}

func (e *Exporter) writeYAML(path string, fields resource.Fields) error {
	data, err := yamlutil.MarshalWithIndent(map[string]any(fields), 2)
	if err != nil {
		return internalError("failed to encode catalog entry", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return internalError("failed to write catalog entry", err)
	}
	return nil
}

// commit stages and commits any change under the base directory. A clean
// worktree commits nothing and reports false.
func (e *Exporter) commit(message string) (bool, error) {
	repo, err := gogit.PlainOpen(e.baseDir)
	if err != nil {
		if !errors.Is(err, gogit.ErrRepositoryNotExists) {
			return false, internalError("failed to open catalog repository", err)
		}
		repo, err = gogit.PlainInit(e.baseDir, false)
		if err != nil {
			return false, internalError("failed to initialize catalog repository", err)
		}
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return false, internalError("failed to open catalog worktree", err)
	}

	status, err := worktree.Status()
	if err != nil {
		return false, internalError("failed to inspect catalog worktree", err)
	}
	if status.IsClean() {
		return false, nil
	}

	if err := worktree.AddGlob("."); err != nil {
		return false, internalError("failed to stage catalog changes", err)
	}

	author := &object.Signature{
		Name:  "storectl",
		Email: "storectl@local",
		When:  time.Now(),
	}
	if e.git.AuthorName != "" {
		author.Name = e.git.AuthorName
	}
	if e.git.AuthorEmail != "" {
		author.Email = e.git.AuthorEmail
	}

	if _, err := worktree.Commit(message, &gogit.CommitOptions{Author: author}); err != nil {
		return false, internalError("failed to commit catalog changes", err)
	}
	return true, nil
}

func shopDirName(shop resource.Fields, shopID string) string {
	if slug, ok := shop["slug"].(string); ok && slug != "" {
		return slug
	}
	if name, ok := shop["name"].(string); ok {
		if slug := storefront.Slugify(name); slug != "" {
			return slug
		}
	}
	return "shop-" + shopID
}

func productFileName(product resource.Fields, index int) string {
	if slug, ok := product["slug"].(string); ok && slug != "" {
		return slug + ".yaml"
	}
	if name, ok := product["name"].(string); ok {
		if slug := storefront.Slugify(name); slug != "" {
			return slug + ".yaml"
		}
	}
	return fmt.Sprintf("product-%d.yaml", index+1)
}

func internalError(message string, cause error) error {
	return faults.NewTypedError(faults.InternalError, message, cause)
}
