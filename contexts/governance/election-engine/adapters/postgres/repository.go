package postgresadapter

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"agora/contexts/governance/election-engine/domain/entities"
)

// Repository is the postgres backend for the ledger and winners archive. The
// ledger keeps whole-snapshot semantics: Store rewrites the user set and the
// singleton state row in one transaction, so Load always observes a committed
// snapshot.
type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{db: db, logger: logger}
}

// Migrate creates the schema; call once at startup.
func (r *Repository) Migrate() error {
	return r.db.AutoMigrate(&userModel{}, &electionStateModel{}, &winnerModel{})
}

func (r *Repository) Load(ctx context.Context) (entities.Snapshot, error) {
	var state electionStateModel
	err := r.db.WithContext(ctx).First(&state, "id = ?", stateRowID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return entities.EmptySnapshot(), nil
	}
	if err != nil {
		return entities.Snapshot{}, r.logError("election_repo_load_state_failed", err)
	}

	var rows []userModel
	if err := r.db.WithContext(ctx).Order("seq ASC").Find(&rows).Error; err != nil {
		return entities.Snapshot{}, r.logError("election_repo_load_users_failed", err)
	}

	snapshot := entities.Snapshot{
		Stage:                entities.Stage(state.Stage),
		RemainderTransferred: state.RemainderTransferred,
	}
	if !snapshot.Stage.Valid() {
		snapshot.Stage = entities.StageRegistration
	}
	for _, row := range rows {
		snapshot.Users = append(snapshot.Users, row.toEntity())
	}
	return snapshot, nil
}

func (r *Repository) Store(ctx context.Context, snapshot entities.Snapshot) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&userModel{}).Error; err != nil {
			return err
		}
		for i, user := range snapshot.Users {
			row := userModelFromEntity(user, i)
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		state := electionStateModel{
			ID:                   stateRowID,
			Stage:                string(snapshot.Stage),
			RemainderTransferred: snapshot.RemainderTransferred,
		}
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"stage":                 state.Stage,
				"remainder_transferred": state.RemainderTransferred,
			}),
		}).Create(&state).Error
	})
	if err != nil {
		return r.logError("election_repo_store_failed", err)
	}
	return nil
}

func (r *Repository) Append(ctx context.Context, username string) error {
	row := winnerModel{Username: username}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "username"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		if isUniqueViolation(create.Error) {
			return nil
		}
		return r.logError("election_repo_append_winner_failed", create.Error,
			"username", username,
		)
	}
	return nil
}

func (r *Repository) List(ctx context.Context) ([]string, error) {
	var rows []winnerModel
	if err := r.db.WithContext(ctx).Order("seq ASC").Find(&rows).Error; err != nil {
		return nil, r.logError("election_repo_list_winners_failed", err)
	}
	var winners []string
	for _, row := range rows {
		winners = append(winners, row.Username)
	}
	return winners, nil
}

func (r *Repository) logError(event string, err error, args ...any) error {
	fields := append([]any{
		"event", event,
		"module", "governance/election-engine",
		"layer", "adapters/postgres",
		"error", err.Error(),
	}, args...)
	r.logger.Error("election repository operation failed", fields...)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

const stateRowID = 1

type userModel struct {
	Username      string          `gorm:"column:username;primaryKey"`
	Seq           int             `gorm:"column:seq"`
	Password      string          `gorm:"column:password"`
	Role          string          `gorm:"column:role"`
	Candidacy     bool            `gorm:"column:candidacy"`
	EtherBalance  decimal.Decimal `gorm:"column:ether;type:numeric(36,18)"`
	VotedFor      string          `gorm:"column:voted_for"`
	VotesReceived int             `gorm:"column:votes_received"`
	PledgedEther  decimal.Decimal `gorm:"column:pledged_ether;type:numeric(36,18)"`
	Measure       decimal.Decimal `gorm:"column:measure;type:numeric(36,18)"`
	Address       string          `gorm:"column:address"`
}

func (userModel) TableName() string {
	return "election_users"
}

func (m userModel) toEntity() entities.User {
	return entities.User{
		Username:      m.Username,
		Password:      m.Password,
		Role:          entities.Role(m.Role),
		Candidacy:     m.Candidacy,
		EtherBalance:  m.EtherBalance,
		VotedFor:      m.VotedFor,
		VotesReceived: m.VotesReceived,
		PledgedEther:  m.PledgedEther,
		Measure:       m.Measure,
		Address:       m.Address,
	}
}

func userModelFromEntity(user entities.User, seq int) userModel {
	return userModel{
		Username:      user.Username,
		Seq:           seq,
		Password:      user.Password,
		Role:          string(user.Role),
		Candidacy:     user.Candidacy,
		EtherBalance:  user.EtherBalance,
		VotedFor:      user.VotedFor,
		VotesReceived: user.VotesReceived,
		PledgedEther:  user.PledgedEther,
		Measure:       user.Measure,
		Address:       user.Address,
	}
}

type electionStateModel struct {
	ID                   int    `gorm:"column:id;primaryKey"`
	Stage                string `gorm:"column:stage"`
	RemainderTransferred bool   `gorm:"column:remainder_transferred"`
}

func (electionStateModel) TableName() string {
	return "election_state"
}

type winnerModel struct {
	Seq      int    `gorm:"column:seq;primaryKey;autoIncrement"`
	Username string `gorm:"column:username;uniqueIndex"`
}

func (winnerModel) TableName() string {
	return "election_winners"
}
