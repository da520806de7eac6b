package corpus

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"docchat/pkg/domain"
	"docchat/pkg/store"
)

func newTestManager(maxBytes int64) *Manager {
	return New(store.NewMemoryStore(), maxBytes)
}

func TestCombine(t *testing.T) {
	if got := Combine("", "first"); got != "first" {
		t.Fatalf("Combine with empty old = %q", got)
	}
	if got := Combine("Total: $10", "Pay by Friday"); got != "Total: $10\nPay by Friday" {
		t.Fatalf("Combine() = %q", got)
	}
}

func TestCreateThenAppend(t *testing.T) {
	m := newTestManager(0)
	ctx := context.Background()

	c, err := m.CreateOrAppend(ctx, "owner-1", "Total: $10")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if c.Text != "Total: $10" {
		t.Fatalf("text after create = %q", c.Text)
	}

	c, err = m.CreateOrAppend(ctx, "owner-1", "Pay by Friday")
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if c.Text != "Total: $10\nPay by Friday" {
		t.Fatalf("text after append = %q", c.Text)
	}
	if c.ByteSize != int64(len(c.Text)) {
		t.Fatalf("byte size %d does not match text length %d", c.ByteSize, len(c.Text))
	}
}

func TestAppendMonotonicity(t *testing.T) {
	m := newTestManager(0)
	ctx := context.Background()
	parts := []string{"one", "two", "three", "four"}
	for _, p := range parts {
		if _, err := m.CreateOrAppend(ctx, "owner-1", p); err != nil {
			t.Fatalf("append %q: %v", p, err)
		}
	}
	c, err := m.Read(ctx, "owner-1")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if want := strings.Join(parts, Separator); c.Text != want {
		t.Fatalf("corpus = %q, want %q", c.Text, want)
	}
}

func TestEmptyTextNeverCreatesCorpus(t *testing.T) {
	m := newTestManager(0)
	ctx := context.Background()
	for _, text := range []string{"", "   ", "\n\t "} {
		if _, err := m.CreateOrAppend(ctx, "owner-1", text); !errors.Is(err, domain.ErrEmptyExtraction) {
			t.Fatalf("text %q: expected empty extraction error, got: %v", text, err)
		}
	}
	if _, err := m.Read(ctx, "owner-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("no corpus row should exist, read returned: %v", err)
	}
}

func TestQuotaExceededLeavesPriorStateIntact(t *testing.T) {
	m := newTestManager(16)
	ctx := context.Background()
	if _, err := m.CreateOrAppend(ctx, "owner-1", "0123456789"); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := m.CreateOrAppend(ctx, "owner-1", "0123456789")
	if !errors.Is(err, domain.ErrQuotaExceeded) {
		t.Fatalf("expected quota error, got: %v", err)
	}
	c, err := m.Read(ctx, "owner-1")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if c.Text != "0123456789" {
		t.Fatalf("failed append must not change the corpus, got %q", c.Text)
	}
}

func TestQuotaAppliesToFirstWrite(t *testing.T) {
	m := newTestManager(4)
	if _, err := m.CreateOrAppend(context.Background(), "owner-1", "too big"); !errors.Is(err, domain.ErrQuotaExceeded) {
		t.Fatalf("expected quota error, got: %v", err)
	}
}

func TestReadUnknownOwner(t *testing.T) {
	m := newTestManager(0)
	if _, err := m.Read(context.Background(), "nobody"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got: %v", err)
	}
}

func TestDeleteThenRead(t *testing.T) {
	m := newTestManager(0)
	ctx := context.Background()
	if _, err := m.CreateOrAppend(ctx, "owner-1", "content"); err != nil {
		t.Fatalf("create: %v", err)
	}
	existed, err := m.Delete(ctx, "owner-1")
	if err != nil || !existed {
		t.Fatalf("delete: existed=%v err=%v", existed, err)
	}
	if _, err := m.Read(ctx, "owner-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("read after delete: %v", err)
	}
	// idempotent
	existed, err = m.Delete(ctx, "owner-1")
	if err != nil || existed {
		t.Fatalf("second delete: existed=%v err=%v", existed, err)
	}
}

func TestOwnerIsolation(t *testing.T) {
	m := newTestManager(0)
	ctx := context.Background()
	if _, err := m.CreateOrAppend(ctx, "owner-a", "alpha"); err != nil {
		t.Fatalf("owner-a: %v", err)
	}
	if _, err := m.CreateOrAppend(ctx, "owner-b", "beta"); err != nil {
		t.Fatalf("owner-b: %v", err)
	}
	if _, err := m.Delete(ctx, "owner-b"); err != nil {
		t.Fatalf("delete owner-b: %v", err)
	}
	c, err := m.Read(ctx, "owner-a")
	if err != nil || c.Text != "alpha" {
		t.Fatalf("owner-a corpus affected by owner-b operations: %q %v", c.Text, err)
	}
}

func TestConcurrentAppendsLoseNoUpdates(t *testing.T) {
	m := newTestManager(0)
	ctx := context.Background()
	const workers = 32
	const piece = "0123456789"

	var wg sync.WaitGroup
	wg.Add(workers)
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			if _, err := m.CreateOrAppend(ctx, "owner-1", piece); err != nil {
				t.Errorf("append: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	c, err := m.Read(ctx, "owner-1")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := workers*len(piece) + (workers-1)*len(Separator)
	if len(c.Text) != want {
		t.Fatalf("corpus size %d, want %d (lost or duplicated appends)", len(c.Text), want)
	}
	if got := strings.Count(c.Text, piece); got != workers {
		t.Fatalf("found %d appended pieces, want %d", got, workers)
	}
}

func TestConcurrentAppendsDistinctOwnersDoNotBlock(t *testing.T) {
	m := newTestManager(0)
	ctx := context.Background()
	const owners = 16
	var wg sync.WaitGroup
	wg.Add(owners)
	for i := 0; i < owners; i++ {
		go func(n int) {
			defer wg.Done()
			owner := fmt.Sprintf("owner-%d", n)
			for j := 0; j < 5; j++ {
				if _, err := m.CreateOrAppend(ctx, owner, "part"); err != nil {
					t.Errorf("%s: %v", owner, err)
				}
			}
		}(i)
	}
	wg.Wait()
	for i := 0; i < owners; i++ {
		c, err := m.Read(ctx, fmt.Sprintf("owner-%d", i))
		if err != nil {
			t.Fatalf("read owner-%d: %v", i, err)
		}
		if want := strings.Join([]string{"part", "part", "part", "part", "part"}, Separator); c.Text != want {
			t.Fatalf("owner-%d corpus = %q", i, c.Text)
		}
	}
}

func TestAcquireRespectsContextCancellation(t *testing.T) {
	m := newTestManager(0)
	// Hold the lock for owner-1.
	if err := m.locks.acquire(context.Background(), "owner-1"); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	defer m.locks.release("owner-1")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := m.CreateOrAppend(ctx, "owner-1", "blocked"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got: %v", err)
	}
}
