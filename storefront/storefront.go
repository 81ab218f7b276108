// Package storefront holds the domain model of the storefront backend: the
// resource paths, the editable keys per resource, and the response
// envelopes.
package storefront

import (
	"fmt"
	"strings"

	"github.com/crmarques/storectl/extract"
)

// Resource paths, relative to the versioned API root.
const (
	ShopsPath   = "shops"
	LoginPath   = "auth/login"
	LogoutPath  = "auth/logout"
	ProfilePath = "auth/me"
)

func ShopPath(shopID string) string {
	return fmt.Sprintf("shops/%s", shopID)
}

func ShopBySlugPath(slug string) string {
	return fmt.Sprintf("shops/by-slug/%s", slug)
}

func ProductsPath(shopID string) string {
	return fmt.Sprintf("shops/%s/products", shopID)
}

func ProductPath(shopID string, productID string) string {
	return fmt.Sprintf("shops/%s/products/%s", shopID, productID)
}

func ProductBySlugPath(shopID string, slug string) string {
	return fmt.Sprintf("shops/%s/products/by-slug/%s", shopID, slug)
}

func ProductImagesPath(shopID string, productID string) string {
	return fmt.Sprintf("shops/%s/products/%s/images", shopID, productID)
}

func ProductImageUploadPath(shopID string, productID string) string {
	return fmt.Sprintf("shops/%s/products/%s/images/upload", shopID, productID)
}

func ProductImagePath(shopID string, productID string, imageID string) string {
	return fmt.Sprintf("shops/%s/products/%s/images/%s", shopID, productID, imageID)
}

func ProductImageReorderPath(shopID string, productID string) string {
	return fmt.Sprintf("shops/%s/products/%s/images/reorder", shopID, productID)
}

// ShopKeys are the shop fields the backend accepts on create and update.
func ShopKeys() []string {
	return []string{
		"name",
		"slug",
		"description",
		"currency",
		"contact_email",
		"status",
	}
}

// ProductKeys are the product fields the backend accepts on create and
// update.
func ProductKeys() []string {
	return []string{
		"name",
		"slug",
		"sku",
		"category",
		"short_description",
		"long_description",
		"status",
		"base_price",
		"discounted_price",
		"currency",
		"stock_quantity",
		"stock_status",
		"available_from",
		"available_to",
	}
}

// ProfileKeys are the account fields editable through the profile endpoint.
func ProfileKeys() []string {
	return []string{
		"display_name",
		"email",
		"locale",
	}
}

// UserEnvelope unwraps the {"user": ...} wrapper the auth endpoints use.
var UserEnvelope = extract.Key("user")

// ShopEnvelope unwraps the {"shop": ...} wrapper some shop endpoints use.
var ShopEnvelope = extract.Key("shop")

// Slugify derives a URL slug the way the backend does: lowercase, runs of
// anything but letters and digits collapse to one hyphen.
func Slugify(name string) string {
	var builder strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !isAlnum {
			pendingHyphen = builder.Len() > 0
			continue
		}
		if pendingHyphen {
			builder.WriteByte('-')
			pendingHyphen = false
		}
		builder.WriteRune(r)
	}
	return builder.String()
}
