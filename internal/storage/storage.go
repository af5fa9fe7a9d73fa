// internal/storage/storage.go
package storage

import (
	"context"
	"errors"

	"github.com/rovshanmuradov/memescope/internal/storage/models"
)

var ErrNotFound = errors.New("record not found")

// Storage определяет интерфейс для работы с хранилищем
type Storage interface {
	// Оценки токенов
	SaveAssessment(ctx context.Context, a *models.Assessment) error
	ListAssessments(ctx context.Context, address string, limit int) ([]*models.Assessment, error)

	// Бэктесты
	SaveBacktestRun(ctx context.Context, run *models.BacktestRun) error
	GetBacktestRun(ctx context.Context, id string) (*models.BacktestRun, error)

	Close() error
}
