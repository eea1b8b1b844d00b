package introspect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeName(t *testing.T) {
	tests := map[string]string{
		"user":          "User",
		"bill_product":  "BillProduct",
		"order-item":    "OrderItem",
		"api_key":       "ApiKey",
		"user__profile": "UserProfile",
	}
	for table, want := range tests {
		assert.Equal(t, want, typeName(table))
	}
}

func TestFieldName(t *testing.T) {
	tests := map[string]string{
		"id":         "id",
		"created_at": "createdAt",
		"is_active":  "isActive",
		"URL":        "uRL",
	}
	for column, want := range tests {
		assert.Equal(t, want, fieldName(column))
	}
}

func TestRelationFieldName(t *testing.T) {
	tests := map[string]string{
		"author_id":  "author",
		"manager_id": "manager",
		"parentId":   "parent",
		"id":         "id",
		"owner":      "owner",
	}
	for column, want := range tests {
		assert.Equal(t, want, relationFieldName(column))
	}
}

func TestBackRefFieldName(t *testing.T) {
	t.Run("single key pluralizes the source table", func(t *testing.T) {
		assert.Equal(t, "posts", backRefFieldName("post", "author_id", true, false))
		assert.Equal(t, "billProducts", backRefFieldName("bill_product", "bill_id", true, false))
	})

	t.Run("one-to-one keeps the singular", func(t *testing.T) {
		assert.Equal(t, "profile", backRefFieldName("profile", "user_id", true, true))
	})

	t.Run("several keys prefix the column base", func(t *testing.T) {
		assert.Equal(t, "authorPosts", backRefFieldName("post", "author_id", false, false))
		assert.Equal(t, "editorPosts", backRefFieldName("post", "editor_id", false, false))
	})
}

func TestJunctionFieldName(t *testing.T) {
	assert.Equal(t, "products", junctionFieldName("bill_product", "product", "product_id", false, false))
	assert.Equal(t, "categories", junctionFieldName("post_category", "category", "category_id", false, false))
	assert.Equal(t, "friends", junctionFieldName("friendship", "user", "friend_id", true, false))
	assert.Equal(t, "users", junctionFieldName("friendship", "user", "user_id", true, false))

	t.Run("parallel junctions carry the junction table name", func(t *testing.T) {
		assert.Equal(t, "likesPosts", junctionFieldName("likes", "post", "post_id", false, true))
		assert.Equal(t, "bookmarksPosts", junctionFieldName("bookmarks", "post", "post_id", false, true))
		assert.Equal(t, "likesUsers", junctionFieldName("likes", "user", "user_id", false, true))
	})
}

func TestColumnBase(t *testing.T) {
	assert.Equal(t, "author", columnBase("author_id"))
	assert.Equal(t, "parent", columnBase("parentId"))
	assert.Equal(t, "owner", columnBase("owner"))
	assert.Equal(t, "id", columnBase("id"))
}
