package clients

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/valkey-io/valkey-go"
)

var (
	valkeyInstance *ValkeyClient
	valkeyOnce     sync.Once
)

type ValkeyClient struct {
	Client valkey.Client
	mu     sync.Mutex
}

// Keys of the processed-event sets, one per content kind. The bus is
// at-least-once, so the consumer keeps its own seen-set.
const (
	VALKEY_EVENTS_KEY     = "redditwatch:processed_events"
	VALKEY_EVENTS_TTL_SEC = 86400
)

func valkeyOptions() valkey.ClientOption {
	opts := valkey.ClientOption{
		InitAddress: []string{
			os.Getenv("VALKEY_INIT_ADDRESS"),
		},
		Password:         os.Getenv("VALKEY_PASSWORD"),
		ConnWriteTimeout: 5 * time.Second,
		SelectDB:         0,
	}

	if os.Getenv("VALKEY_TLS") == "true" {
		opts.TLSConfig = &tls.Config{InsecureSkipVerify: false}
	}

	return opts
}

func InitValkey() *ValkeyClient {
	valkeyOnce.Do(func() {
		client, err := valkey.NewClient(valkeyOptions())
		if err != nil {
			panic(fmt.Errorf("[ValkeyClient] failed to create Valkey: %w", err))
		}

		ctx, cancel := context.WithTimeout(context.Background(), time.Second*3)
		defer cancel()

		c := client.Do(ctx, client.B().Ping().Build())
		if c.Error() != nil {
			panic(fmt.Errorf("[ValkeyClient] failed to ping Valkey: %w", c.Error()))
		}

		slog.Info("[ValkeyClient] Successfully connected to valkey")

		valkeyInstance = &ValkeyClient{Client: client}
	})
	return valkeyInstance
}

func (vc *ValkeyClient) recreateClient() {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("[ValkeyClient] Recreate failed and was recovered from panic",
				slog.Any("panic", r))
		}
	}()

	vc.mu.Lock()
	defer vc.mu.Unlock()
	slog.Warn("[ValkeyClient] Attempting to recreate Valkey client...")
	vc.Client.Close()

	client, err := valkey.NewClient(valkeyOptions())
	if err != nil {
		panic(fmt.Errorf("[ValkeyClient] failed to create Valkey: %w", err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*3)
	defer cancel()

	c := client.Do(ctx, client.B().Ping().Build())
	if c.Error() != nil {
		panic(fmt.Errorf("[ValkeyClient] failed to ping Valkey: %w", c.Error()))
	}

	slog.Info("[ValkeyClient] Successfully reconnected to valkey")
	vc.Client = client
}

func CloseValkey() {
	if valkeyInstance != nil {
		valkeyInstance.Client.Close()
	}
}

func GetValkeyClient() *ValkeyClient {
	if valkeyInstance == nil {
		panic("[ValkeyClient] Error: Valkey client is not initialized")
	}
	return valkeyInstance
}

// MarkEventProcessed records that the consumer has fully handled an event.
// The dedupe key is the event's fingerprint (item id + transition + body
// hash), not just the item id: the same item legitimately produces several
// events over its life.
func (vc *ValkeyClient) MarkEventProcessed(ctx context.Context, fingerprint string) error {
	completed := []valkey.Completed{
		vc.Client.B().Sadd().Key(VALKEY_EVENTS_KEY).Member(fingerprint).Build(),
		vc.Client.B().Expire().Key(VALKEY_EVENTS_KEY).Seconds(VALKEY_EVENTS_TTL_SEC).Build(),
	}

	responses := vc.DoMultiWithRetry(ctx, completed, 3)
	for _, res := range responses {
		if err := res.Error(); err != nil {
			return err
		}
	}

	return nil
}

// IsEventProcessed reports whether an event fingerprint was already handled.
func (vc *ValkeyClient) IsEventProcessed(ctx context.Context, fingerprint string) bool {
	res := vc.DoWithRetry(ctx, vc.Client.B().Sismember().Key(VALKEY_EVENTS_KEY).Member(fingerprint).Build(), 3)

	if err := res.Error(); isConnectionError(err) {
		vc.recreateClient()
	}

	ok, err := res.AsBool()
	if err != nil {
		return false
	}

	return ok
}

func (vc *ValkeyClient) DoMultiWithRetry(ctx context.Context, completed []valkey.Completed, retries int) []valkey.ValkeyResult {
	var results []valkey.ValkeyResult

	for i := 0; i < retries; i++ {
		results = vc.Client.DoMulti(ctx, completed...)
		hasErr := false
		for _, r := range results {
			if r.Error() != nil {
				hasErr = true
				slog.Warn("[ValkeyClient] DoMulti failed",
					slog.Int("attempt", i+1),
					slog.String("error", r.Error().Error()))
				if isConnectionError(r.Error()) {
					vc.recreateClient()
				}
				break
			}
		}
		if !hasErr {
			break
		}
		time.Sleep(time.Millisecond * 250)
	}

	return results
}

func (vc *ValkeyClient) DoWithRetry(ctx context.Context, completed valkey.Completed, retries int) valkey.ValkeyResult {
	var result valkey.ValkeyResult
	for i := 0; i < retries; i++ {
		result = vc.Client.Do(ctx, completed)
		if result.Error() == nil {
			break
		}

		slog.Warn("[ValkeyClient] Do failed",
			slog.Int("attempt", i+1),
			slog.String("error", result.Error().Error()))

		time.Sleep(250 * time.Millisecond)
	}

	return result
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "EOF") ||
		strings.Contains(msg, "i/o timeout")
}
