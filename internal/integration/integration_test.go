package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"adaptive-quiz-service/internal/app"
	"adaptive-quiz-service/internal/domain"
	"adaptive-quiz-service/internal/infra/postgres"
	pgmigrations "adaptive-quiz-service/internal/infra/postgres/migrations"
	infraredis "adaptive-quiz-service/internal/infra/redis"
	"adaptive-quiz-service/internal/llm"
	"adaptive-quiz-service/internal/questiongen"
	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

func TestQuizEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	migrateDB(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()
	store := postgres.NewStore(pool)

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	provider := llm.NewMockProvider(llm.MockResponse{Content: batchJSON(t, 3)})
	gen := questiongen.NewLLMGenerator(provider, questiongen.DefaultConfig())

	collections := infraredis.NewCollectionCache(redisClient, store, 5*time.Minute)
	questions := app.NewQuestionStore(collections, gen, app.InventoryPolicy{BatchSize: 3, MaxEmptyBatches: 1, MaxBatches: 2})
	sessions := infraredis.NewSessionStore(redisClient, 5*time.Minute)
	service := app.NewQuizService(
		questions,
		app.NewSelector(1),
		app.NewLeaderboard(store),
		app.NewUsers(store),
		sessions,
		app.QuizCounts{Evaluation: 3, Main: 3},
	)

	// Alice answers everything correctly, Bob gets one right.
	alice := playQuiz(t, ctx, service, "u1", "Alice", 3)
	bob := playQuiz(t, ctx, service, "u2", "Bob", 1)
	if alice.Score != 100 || bob.Score != 33 {
		t.Fatalf("unexpected scores alice=%d bob=%d", alice.Score, bob.Score)
	}
	if len(provider.Calls) != 1 {
		t.Fatalf("expected one generation call, got %d", len(provider.Calls))
	}

	board, err := service.Leaderboard(ctx, "History", domain.TierCollege)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(board) != 2 || board[0].UserID != "u1" || board[1].UserID != "u2" {
		t.Fatalf("expected alice ahead of bob, got %+v", board)
	}

	stored, err := store.LoadCollection(ctx, domain.QuizKey("History", domain.TierCollege))
	if err != nil || len(stored) != 3 {
		t.Fatalf("collection not persisted in postgres: %d %v", len(stored), err)
	}
	if n, err := redisClient.Exists(ctx, "quiz:cache:history_grade_3").Result(); err != nil || n != 1 {
		t.Fatalf("expected cached collection in redis, exists=%d err=%v", n, err)
	}

	user, err := store.GetUser(ctx, "u2")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if user.Grades["History"] != "College" || user.Scores["History"] != 33 {
		t.Fatalf("unexpected user record %+v", user)
	}
}

// playQuiz answers the first `correct` questions right and the rest wrong.
func playQuiz(t *testing.T, ctx context.Context, service *app.QuizService, userID, name string, correct int) app.Result {
	t.Helper()
	started, err := service.StartQuiz(ctx, userID, name, "History", domain.TierCollege)
	if err != nil {
		t.Fatalf("start quiz for %s: %v", name, err)
	}
	for i, q := range started.Session.Questions() {
		choice := q.CorrectAnswer
		if i >= correct {
			choice = wrongOption(q)
		}
		if _, err := service.Answer(ctx, started.Session.ID(), choice); err != nil {
			t.Fatalf("answer %d for %s: %v", i, name, err)
		}
	}
	res, err := service.Finish(ctx, started.Session.ID())
	if err != nil {
		t.Fatalf("finish for %s: %v", name, err)
	}
	return res
}

func wrongOption(q domain.Question) string {
	for _, opt := range q.Options {
		if opt != q.CorrectAnswer {
			return opt
		}
	}
	return ""
}

func batchJSON(t *testing.T, n int) json.RawMessage {
	t.Helper()
	type item struct {
		Question      string   `json:"question"`
		Difficulty    int      `json:"difficulty"`
		Options       []string `json:"options"`
		CorrectAnswer string   `json:"correct_answer"`
		Explanation   string   `json:"explanation"`
		Concept       string   `json:"concept"`
	}
	var batch struct {
		Questions []item `json:"questions"`
	}
	for i := 0; i < n; i++ {
		answer := fmt.Sprintf("answer %d", i)
		batch.Questions = append(batch.Questions, item{
			Question:      fmt.Sprintf("History question %d?", i),
			Difficulty:    i + 1,
			Options:       []string{answer, "other a", "other b", "other c"},
			CorrectAnswer: answer,
			Explanation:   "because",
			Concept:       "history",
		})
	}
	data, err := json.Marshal(batch)
	if err != nil {
		t.Fatalf("marshal batch: %v", err)
	}
	return data
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func migrateDB(t *testing.T, ctx context.Context, dsn string) {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
