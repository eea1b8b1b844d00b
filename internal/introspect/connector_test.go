package introspect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConnector(t *testing.T) {
	db, _ := newMockDB(t)

	t.Run("registered dialects", func(t *testing.T) {
		for _, driver := range []string{"postgres", "mysql", "POSTGRES"} {
			conn, err := NewConnector(driver, db, "")
			require.NoError(t, err, driver)
			assert.NotNil(t, conn)
		}
	})

	t.Run("unknown dialect", func(t *testing.T) {
		_, err := NewConnector("oracle", db, "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported database driver: oracle")
		assert.Contains(t, err.Error(), "mysql, postgres")
	})
}
