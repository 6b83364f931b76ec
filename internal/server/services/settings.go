package services

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/cmskeeper/internal/common"
	"github.com/dmitrijs2005/cmskeeper/internal/dbx"
	"github.com/dmitrijs2005/cmskeeper/internal/logging"
	"github.com/dmitrijs2005/cmskeeper/internal/server/models"
	"github.com/dmitrijs2005/cmskeeper/internal/server/repositories/repomanager"
	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

// SettingsCacheTTL bounds how long a cached setting is served.
const SettingsCacheTTL = 5 * time.Minute

// SettingService reads and updates site settings. Lookups by name go
// through an expiring LRU cache that is invalidated on every update.
type SettingService struct {
	db          DB
	repomanager repomanager.RepositoryManager
	cache       *lru.LRU[string, *models.Setting]
	log         logging.Logger

	// generation is bumped by every update; a lookup that started under
	// an older generation does not populate the cache.
	mu         sync.Mutex
	generation uint64
}

func NewSettingService(db DB, m repomanager.RepositoryManager, cacheSize int, log logging.Logger) (*SettingService, error) {
	if cacheSize <= 0 {
		return nil, fmt.Errorf("settings cache: size must be positive, got %d", cacheSize)
	}
	return &SettingService{
		db:          db,
		repomanager: m,
		cache:       lru.NewLRU[string, *models.Setting](cacheSize, nil, SettingsCacheTTL),
		log:         log.With("component", "settings"),
	}, nil
}

func (s *SettingService) currentGeneration() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

func (s *SettingService) List(ctx context.Context) ([]*models.Setting, error) {
	return s.repomanager.Settings(s.db).List(ctx)
}

func (s *SettingService) Get(ctx context.Context, id string) (*models.Setting, error) {
	st, err := s.repomanager.Settings(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, common.ErrSettingNotExist)
	}
	return st, nil
}

// GetSettingByName returns the named setting, from the cache when present.
func (s *SettingService) GetSettingByName(ctx context.Context, name string) (*models.Setting, error) {
	if st, ok := s.cache.Get(name); ok {
		return st, nil
	}
	gen := s.currentGeneration()
	st, err := s.repomanager.Settings(s.db).GetByName(ctx, name)
	if err != nil {
		return nil, notFound(err, common.ErrSettingNotExist)
	}

	s.mu.Lock()
	if s.generation == gen {
		s.cache.Add(name, st)
	}
	s.mu.Unlock()
	return st, nil
}

// Update stores the values of known settings present in values, in one
// transaction, and returns every setting. Unknown names are ignored.
func (s *SettingService) Update(ctx context.Context, values map[string]*string) ([]*models.Setting, error) {
	var updated []string
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Settings(tx)
		for _, name := range models.SettingNames {
			value, ok := values[name]
			if !ok {
				continue
			}
			if err := repo.UpdateValue(ctx, name, value); err != nil {
				return notFound(err, common.ErrSettingNotExist)
			}
			updated = append(updated, name)
		}
		return nil
	})
	s.mu.Lock()
	s.generation++
	for _, name := range updated {
		s.cache.Remove(name)
	}
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "settings updated", "names", updated)
	return s.List(ctx)
}

// Language returns the site language, falling back to English when the
// setting is empty, unsupported or unreadable.
func (s *SettingService) Language(ctx context.Context) string {
	st, err := s.GetSettingByName(ctx, models.SettingLanguage)
	if err != nil {
		s.log.Warn(ctx, "site language unavailable", "error", err)
		return models.LanguageEN
	}
	if st.Value == nil || !slices.Contains([]string{models.LanguageEN, models.LanguagePL}, *st.Value) {
		return models.LanguageEN
	}
	return *st.Value
}
