package catalog

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	gogit "github.com/go-git/go-git/v5"

	"github.com/crmarques/storectl/api"
	"github.com/crmarques/storectl/resource"
	"github.com/crmarques/storectl/storefront"
)

type fakeClient struct {
	responses map[string]resource.Value
}

func (f *fakeClient) Get(ctx context.Context, path string, opts *api.RequestOptions) (resource.Value, error) {
	return f.responses[path], nil
}

func newShopClient() *fakeClient {
	return &fakeClient{responses: map[string]resource.Value{
		storefront.ShopPath("5"): map[string]any{
			"id":   int64(5),
			"name": "Fine Mugs",
			"slug": "fine-mugs",
		},
		storefront.ProductsPath("5"): []any{
			map[string]any{"id": int64(1), "name": "Blue Mug", "slug": "blue-mug", "base_price": "12.50"},
			map[string]any{"id": int64(2), "name": "Red Mug"},
		},
	}}
}

func TestExportShop(t *testing.T) {
	t.Parallel()

	t.Run("writes_shop_and_products", func(t *testing.T) {
		t.Parallel()

		baseDir := t.TempDir()
		exporter, err := NewExporter(newShopClient(), baseDir, nil)
		if err != nil {
			t.Fatalf("NewExporter returned error: %v", err)
		}

		written, err := exporter.ExportShop(context.Background(), "5")
		if err != nil {
			t.Fatalf("ExportShop returned error: %v", err)
		}
		if written != 3 {
			t.Fatalf("written = %d, want 3", written)
		}

		shopFile := filepath.Join(baseDir, "fine-mugs", "shop.yaml")
		data, err := os.ReadFile(shopFile)
		if err != nil {
			t.Fatalf("shop.yaml missing: %v", err)
		}
		if !strings.Contains(string(data), "name: Fine Mugs") {
			t.Fatalf("unexpected shop.yaml contents: %s", data)
		}

		if _, err := os.Stat(filepath.Join(baseDir, "fine-mugs", "products", "blue-mug.yaml")); err != nil {
			t.Fatalf("product file missing: %v", err)
		}
		if _, err := os.Stat(filepath.Join(baseDir, "fine-mugs", "products", "red-mug.yaml")); err != nil {
			t.Fatalf("slug fallback file missing: %v", err)
		}
	})

	t.Run("empty_base_dir_rejected", func(t *testing.T) {
		t.Parallel()

		if _, err := NewExporter(&fakeClient{}, "  ", nil); err == nil {
			t.Fatal("expected error for empty base dir")
		}
	})

	t.Run("git_commit_records_export", func(t *testing.T) {
		t.Parallel()

		baseDir := t.TempDir()
		exporter, err := NewExporter(newShopClient(), baseDir, &GitOptions{
			AuthorName:  "Catalog Bot",
			AuthorEmail: "bot@example.com",
		})
		if err != nil {
			t.Fatalf("NewExporter returned error: %v", err)
		}

		if _, err := exporter.ExportShop(context.Background(), "5"); err != nil {
			t.Fatalf("ExportShop returned error: %v", err)
		}

		repo, err := gogit.PlainOpen(baseDir)
		if err != nil {
			t.Fatalf("catalog repository missing: %v", err)
		}
		head, err := repo.Head()
		if err != nil {
			t.Fatalf("repository has no commits: %v", err)
		}
		commit, err := repo.CommitObject(head.Hash())
		if err != nil {
			t.Fatalf("failed to read commit: %v", err)
		}
		if !strings.Contains(commit.Message, "export shop 5") {
			t.Fatalf("unexpected commit message: %q", commit.Message)
		}
		if commit.Author.Name != "Catalog Bot" {
			t.Fatalf("unexpected author: %q", commit.Author.Name)
		}
	})

	t.Run("clean_tree_commits_nothing_new", func(t *testing.T) {
		t.Parallel()

		baseDir := t.TempDir()
		exporter, err := NewExporter(newShopClient(), baseDir, &GitOptions{})
		if err != nil {
			t.Fatalf("NewExporter returned error: %v", err)
		}

		if _, err := exporter.ExportShop(context.Background(), "5"); err != nil {
			t.Fatalf("first export returned error: %v", err)
		}
		if _, err := exporter.ExportShop(context.Background(), "5"); err != nil {
			t.Fatalf("second export returned error: %v", err)
		}

		repo, err := gogit.PlainOpen(baseDir)
		if err != nil {
			t.Fatalf("catalog repository missing: %v", err)
		}
		iter, err := repo.Log(&gogit.LogOptions{})
		if err != nil {
			t.Fatalf("failed to read log: %v", err)
		}
		count := 0
		for {
			if _, err := iter.Next(); err != nil {
				break
			}
			count++
		}
		if count != 1 {
			t.Fatalf("expected 1 commit, got %d", count)
		}
	})
}
