package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/Mordecai-Wambua/User-Auth/internal/domain/account"
	vo "github.com/Mordecai-Wambua/User-Auth/internal/domain/account/valueobjects"
	"github.com/Mordecai-Wambua/User-Auth/internal/infrastructure/persistence/mappers"
	"github.com/Mordecai-Wambua/User-Auth/internal/infrastructure/persistence/models"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/db"
	apperrors "github.com/Mordecai-Wambua/User-Auth/internal/shared/errors"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/logger"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/query"
)

// accountOrderColumns is the ORDER BY allow-list for List.
var accountOrderColumns = map[string]string{
	"email":       "email",
	"first_name":  "first_name",
	"last_name":   "last_name",
	"date_joined": "date_joined",
	"last_login":  "last_login",
}

// AccountRepository is the GORM Account Store.
type AccountRepository struct {
	db     *gorm.DB
	mapper mappers.AccountMapper
	logger logger.Interface
}

func NewAccountRepository(gdb *gorm.DB, logger logger.Interface) *AccountRepository {
	return &AccountRepository{
		db:     gdb,
		mapper: mappers.NewAccountMapper(),
		logger: logger,
	}
}

func (r *AccountRepository) conn(ctx context.Context) *gorm.DB {
	return db.GetTxFromContext(ctx, r.db)
}

// Create inserts the account. The unique email index turns a lost race into
// a DuplicateEmail error rather than a second row.
func (r *AccountRepository) Create(ctx context.Context, entity *account.Account) error {
	model, err := r.mapper.ToModel(entity)
	if err != nil {
		return fmt.Errorf("failed to map account entity: %w", err)
	}

	if err := r.conn(ctx).Create(model).Error; err != nil {
		if apperrors.IsDuplicateError(err) {
			if strings.Contains(strings.ToLower(err.Error()), "email") {
				return apperrors.NewDuplicateEmailError()
			}
			return apperrors.NewConflictError("account already exists")
		}
		r.logger.Errorw("failed to create account in database", "error", err)
		return fmt.Errorf("failed to create account: %w", err)
	}

	if err := entity.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set account ID: %w", err)
	}
	entity.MarkStored()

	r.logger.Infow("account created", "sid", model.SID)
	return nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id uint) (*account.Account, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *AccountRepository) GetBySID(ctx context.Context, sid string) (*account.Account, error) {
	return r.first(ctx, "sid = ?", sid)
}

// GetByEmail matches case-insensitively; stored emails are lowercase.
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*account.Account, error) {
	return r.first(ctx, "email = ?", vo.NormalizeEmail(email))
}

func (r *AccountRepository) first(ctx context.Context, where string, arg any) (*account.Account, error) {
	var model models.AccountModel
	if err := r.conn(ctx).Where(where, arg).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Errorw("failed to get account", "where", where, "error", err)
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return r.mapper.ToEntity(&model)
}

func (r *AccountRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.conn(ctx).Model(&models.AccountModel{}).
		Where("email = ?", vo.NormalizeEmail(email)).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return count > 0, nil
}

// Update writes the entity only if storage still holds the version it was
// loaded at, so a writer holding a stale copy loses with a conflict error.
// An entity without changes is not written.
func (r *AccountRepository) Update(ctx context.Context, entity *account.Account) error {
	if !entity.HasChanges() {
		return nil
	}
	model, err := r.mapper.ToModel(entity)
	if err != nil {
		return fmt.Errorf("failed to map account entity: %w", err)
	}

	result := r.conn(ctx).Model(&models.AccountModel{}).
		Where("id = ? AND version = ?", model.ID, entity.StoredVersion()).
		Updates(map[string]any{
			"email":          model.Email,
			"password_hash":  model.PasswordHash,
			"first_name":     model.FirstName,
			"last_name":      model.LastName,
			"is_active":      model.IsActive,
			"is_staff":       model.IsStaff,
			"is_superuser":   model.IsSuperuser,
			"email_verified": model.EmailVerified,
			"last_login":     model.LastLogin,
			"deleted_at":     model.DeletedAt,
			"updated_at":     model.UpdatedAt,
			"version":        model.Version,
		})
	if result.Error != nil {
		if apperrors.IsDuplicateError(result.Error) {
			return apperrors.NewDuplicateEmailError()
		}
		r.logger.Errorw("failed to update account", "id", model.ID, "error", result.Error)
		return fmt.Errorf("failed to update account: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		exists, err := r.GetByID(ctx, model.ID)
		if err != nil {
			return err
		}
		if exists == nil {
			return apperrors.NewNotFoundError("account not found")
		}
		return apperrors.NewConflictError("account was modified concurrently")
	}

	entity.MarkStored()
	return nil
}

// ListActive returns accounts that are active and not soft-deleted.
func (r *AccountRepository) ListActive(ctx context.Context) ([]*account.Account, error) {
	var rows []*models.AccountModel
	if err := r.conn(ctx).Scopes(db.ActiveAccounts()).Order("email ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list active accounts: %w", err)
	}
	return r.mapper.ToEntities(rows)
}

// ListAll includes inactive and soft-deleted accounts.
func (r *AccountRepository) ListAll(ctx context.Context) ([]*account.Account, error) {
	var rows []*models.AccountModel
	if err := r.conn(ctx).Order("email ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return r.mapper.ToEntities(rows)
}

func (r *AccountRepository) List(ctx context.Context, filter account.ListFilter) ([]*account.Account, int64, error) {
	q := r.conn(ctx).Model(&models.AccountModel{})

	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(email) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?", like, like, like)
	}
	if filter.Active != nil {
		if *filter.Active {
			q = q.Scopes(db.ActiveAccounts())
		} else {
			q = q.Where("is_active = ? OR deleted_at IS NOT NULL", false)
		}
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		r.logger.Errorw("failed to count accounts", "error", err)
		return nil, 0, fmt.Errorf("failed to count accounts: %w", err)
	}

	page := query.PageFilter{Page: filter.Page, PageSize: filter.PageSize}
	sort := query.SortFilter{SortBy: filter.OrderBy, SortOrder: filter.Order}

	var rows []*models.AccountModel
	err := q.Order(sort.OrderClause(accountOrderColumns, "email")).
		Offset(page.Offset()).
		Limit(page.Limit()).
		Find(&rows).Error
	if err != nil {
		r.logger.Errorw("failed to list accounts", "error", err)
		return nil, 0, fmt.Errorf("failed to list accounts: %w", err)
	}

	entities, err := r.mapper.ToEntities(rows)
	if err != nil {
		return nil, 0, err
	}
	return entities, total, nil
}
