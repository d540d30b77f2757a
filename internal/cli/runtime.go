package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"adaptive-quiz-service/internal/app"
	"adaptive-quiz-service/internal/config"
	"adaptive-quiz-service/internal/domain"
	"adaptive-quiz-service/internal/infra/file"
	"adaptive-quiz-service/internal/infra/memory"
	"adaptive-quiz-service/internal/infra/postgres"
	redisstore "adaptive-quiz-service/internal/infra/redis"
	"adaptive-quiz-service/internal/infra/sqlite"
	"adaptive-quiz-service/internal/llm"
	"adaptive-quiz-service/internal/questiongen"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
)

// runtime is the wired quiz service plus the connections it owns.
type runtime struct {
	service   *app.QuizService
	questions *app.QuestionStore
	closers   []func() error
}

func (r *runtime) Close() error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// stores are the persistence ports the quiz service needs.
type stores struct {
	collections app.CollectionRepository
	board       app.LeaderboardRepository
	users       app.UserRepository
	sessions    app.SessionRepository
}

func loadConfig(path string) (config.Config, error) {
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return cfg, err
	}
	cfg.ApplyEnv()
	return cfg, cfg.Validate()
}

func buildRuntime(ctx context.Context, cfg config.Config) (*runtime, error) {
	rt := &runtime{}
	st, err := openStores(ctx, cfg, rt)
	if err != nil {
		rt.Close()
		return nil, err
	}

	gen := buildGenerator(ctx, cfg)
	var selector *app.Selector
	if cfg.Quiz.Seed != 0 {
		selector = app.NewSelector(cfg.Quiz.Seed)
	} else {
		selector = app.NewTimeSeededSelector()
	}

	rt.questions = app.NewQuestionStore(st.collections, gen, cfg.InventoryPolicy())
	rt.service = newQuizService(rt.questions, selector, st, cfg.QuizCounts())
	return rt, nil
}

func newQuizService(questions *app.QuestionStore, selector *app.Selector, st stores, counts app.QuizCounts) *app.QuizService {
	return app.NewQuizService(
		questions,
		selector,
		app.NewLeaderboard(st.board),
		app.NewUsers(st.users),
		st.sessions,
		counts,
	)
}

func openStores(ctx context.Context, cfg config.Config, rt *runtime) (stores, error) {
	var st stores

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		rt.closers = append(rt.closers, redisClient.Close)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return st, fmt.Errorf("connect redis: %w", err)
		}
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 30*time.Minute)

	switch cfg.Storage.Backend {
	case config.BackendMemory:
		state := memory.NewStateStore()
		st.collections, st.board, st.users = memory.NewCollectionRepository(), state, state
	case config.BackendFile:
		store, err := file.Open(cfg.Storage.Dir)
		if err != nil {
			return st, err
		}
		st.collections, st.board, st.users = store, store, store
	case config.BackendSQLite:
		store, err := sqlite.OpenFile(cfg.Storage.SQLitePath)
		if err != nil {
			return st, err
		}
		rt.closers = append(rt.closers, store.Close)
		st.collections, st.board, st.users = store, store, store
	case config.BackendPostgres:
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return st, err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return st, fmt.Errorf("connect postgres: %w", err)
		}
		rt.closers = append(rt.closers, func() error { pool.Close(); return nil })
		store := postgres.NewStore(pool)
		st.collections, st.board, st.users = store, store, store
	case config.BackendRedis:
		state := redisstore.NewStateStore(redisClient)
		st.collections, st.board, st.users = redisstore.NewCollectionRepository(redisClient), state, state
	default:
		return st, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	remote := cfg.Storage.Backend == config.BackendSQLite || cfg.Storage.Backend == config.BackendPostgres
	switch {
	case redisClient != nil && remote:
		st.collections = redisstore.NewCollectionCache(redisClient, st.collections, redisTTL)
	case cfg.Cache.TTL != "" && remote:
		st.collections = memory.NewCollectionCache(st.collections, config.TTLDuration(cfg.Cache.TTL, 10*time.Minute))
	}

	if redisClient != nil {
		st.sessions = redisstore.NewSessionStore(redisClient, redisTTL)
	} else {
		st.sessions = memory.NewSessionStore()
	}
	return st, nil
}

// buildGenerator prefers a configured question bank, then an LLM provider.
// When neither is usable the quiz still runs on stored collections.
func buildGenerator(ctx context.Context, cfg config.Config) app.Generator {
	if cfg.Generator.BankPath != "" {
		bank, err := questiongen.LoadBank(cfg.Generator.BankPath)
		if err == nil {
			return bank
		}
		log.Printf("question bank %s unavailable: %v", cfg.Generator.BankPath, err)
	}

	provider, err := llm.NewProvider(ctx, cfg.LLMConfig(), log.Default())
	if err != nil {
		log.Printf("question generation disabled: %v", err)
		return unavailableGenerator{err: err}
	}
	return questiongen.NewLLMGenerator(provider, cfg.QuestionGenConfig())
}

// unavailableGenerator fails every batch so inventory falls back to what is stored.
type unavailableGenerator struct {
	err error
}

func (g unavailableGenerator) GenerateBatch(context.Context, app.BatchRequest) ([]domain.Question, error) {
	return nil, fmt.Errorf("question generation unavailable: %w", g.err)
}
