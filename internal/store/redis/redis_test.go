package redis

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	rdb "github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/dropDatabas3/lockpad/internal/store"
	"github.com/dropDatabas3/lockpad/internal/store/storetest"
)

// redisAddr usa LOCKPAD_TEST_REDIS_ADDR si está; si no, levanta un
// contenedor. Sin ninguno de los dos, skip.
func redisAddr(t *testing.T) string {
	t.Helper()
	if addr := os.Getenv("LOCKPAD_TEST_REDIS_ADDR"); addr != "" {
		return addr
	}
	if os.Getenv("SKIP_INTEGRATION") == "true" {
		t.Skip("SKIP_INTEGRATION=true")
	}
	ctx := context.Background()

	var (
		c   testcontainers.Container
		err error
	)
	func() {
		defer func() {
			if r := recover(); r != nil {
				t.Skipf("docker not available: %v", r)
			}
		}()
		c, err = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "redis:7-alpine",
				ExposedPorts: []string{"6379/tcp"},
				WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
			},
			Started: true,
		})
	}()
	if err != nil {
		t.Skipf("could not start redis container: %v", err)
	}
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, err := c.Host(ctx)
	if err != nil {
		t.Fatal(err)
	}
	port, err := c.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatal(err)
	}
	return fmt.Sprintf("%s:%s", host, port.Port())
}

func TestTable(t *testing.T) {
	addr := redisAddr(t)
	n := 0
	storetest.Run(t, func(t *testing.T) store.Backend {
		n++
		// prefijo propio por subtest para no pisar otras corridas
		tbl := NewWithClient(rdb.NewClient(&rdb.Options{Addr: addr}), fmt.Sprintf("lockpad-test-%d-%d:", time.Now().UnixNano(), n), 2)
		t.Cleanup(func() {
			_ = tbl.Wipe(context.Background())
			_ = tbl.Close()
		})
		return tbl
	})
}

func TestKeysAreNamespaced(t *testing.T) {
	tbl := NewWithClient(rdb.NewClient(&rdb.Options{Addr: "127.0.0.1:0"}), "", 0)
	defer tbl.Close()
	if got := tbl.hashKey("app#u1"); got != "lockpad:p:app#u1" {
		t.Fatalf("hashKey = %s", got)
	}
	if got := tbl.indexKey("user"); got != "lockpad:i:user" {
		t.Fatalf("indexKey = %s", got)
	}
	if tbl.pageSize != 100 {
		t.Fatalf("pageSize = %d", tbl.pageSize)
	}
}
