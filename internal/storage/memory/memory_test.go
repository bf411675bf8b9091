package memory

import (
	"testing"

	"budgetapi/internal/storage"
	"budgetapi/internal/storage/storagetest"
)

func TestStoreContract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Store {
		return New()
	})
}
