package commands

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/ruslano69/dbclean/pkg/core/query"
	"github.com/ruslano69/dbclean/pkg/resultlog"
	"github.com/ruslano69/dbclean/pkg/retry"
)

func TestRunQuery_ResultLog(t *testing.T) {
	mr := miniredis.RunT(t)
	rt, _ := newTestRuntime(t)
	rt.ResultLog = &resultlog.Config{Enabled: true, Address: mr.Addr(), TTL: 60}

	spec := QuerySpec{
		Select:     "id",
		From:       "users",
		Conditions: []query.Condition{{Field: "id", Operator: query.OpGt, Value: "2"}},
	}
	if err := RunQuery(context.Background(), rt, spec); err != nil {
		t.Fatalf("RunQuery failed: %v", err)
	}

	raw, err := mr.Get(resultlog.StateKey("users"))
	if err != nil {
		t.Fatalf("State key not set: %v", err)
	}
	var outcome resultlog.Outcome
	if err := json.Unmarshal([]byte(raw), &outcome); err != nil {
		t.Fatalf("Invalid outcome JSON: %v", err)
	}
	if outcome.Status != resultlog.StatusSuccess || outcome.Rows != 2 || outcome.DBType != "sqlite" {
		t.Errorf("Unexpected outcome: %+v", outcome)
	}
	if !strings.Contains(outcome.SQL, "`id` > ?") {
		t.Errorf("Outcome should carry the bound SQL, got %s", outcome.SQL)
	}
}

func TestRunQuery_ResultLogFailureGoesToDeadLetters(t *testing.T) {
	rt, _ := newTestRuntime(t)
	// адрес без сервера
	rt.ResultLog = &resultlog.Config{Enabled: true, Address: "127.0.0.1:1", Name: "offline"}

	retryer, err := retry.NewRetryer(retry.Config{
		Enabled:        true,
		MaxAttempts:    1,
		DeadLetterFile: filepath.Join(t.TempDir(), "dead.json"),
	})
	if err != nil {
		t.Fatalf("NewRetryer failed: %v", err)
	}
	rt.Retry = retryer

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// результат запроса не зависит от доступности журнала
	if err := RunQuery(ctx, rt, QuerySpec{Select: "*", From: "users"}); err != nil {
		t.Fatalf("RunQuery failed: %v", err)
	}

	entries := retryer.DeadLetters().Entries()
	if len(entries) != 1 || entries[0].Target != "result_log" || entries[0].Key != "users" {
		t.Fatalf("Unexpected dead letters: %+v", entries)
	}

	// повторная отправка в доступный Redis
	mr := miniredis.RunT(t)
	logCfg := &resultlog.Config{Address: mr.Addr()}
	if err := ResendDeadLetters(ctx, rt, nil, logCfg); err != nil {
		t.Fatalf("ResendDeadLetters failed: %v", err)
	}
	if !mr.Exists(resultlog.StateKey("users")) {
		t.Error("Resent outcome not stored")
	}
	if retryer.DeadLetters().Len() != 0 {
		t.Error("Delivered entry should be removed")
	}
}

func TestResendDeadLetters_KeepsFailedEntries(t *testing.T) {
	rt, out := newTestRuntime(t)
	path := filepath.Join(t.TempDir(), "dead.json")

	seed, err := retry.OpenDeadLetters(path, 0)
	if err != nil {
		t.Fatalf("OpenDeadLetters failed: %v", err)
	}
	payload, _ := json.Marshal(resultlog.Outcome{QueryName: "orders", Status: resultlog.StatusSuccess, Rows: 7})
	now := time.Now()
	for _, e := range []retry.Entry{
		{Target: "result_log", Key: "orders", FailedAt: now, Payload: payload},
		// брокер не настроен - запись остается
		{Target: "broker", Key: "orders", FailedAt: now, Payload: json.RawMessage(`{"query":"orders"}`)},
		{Target: "result_log", Key: "broken", FailedAt: now, Payload: json.RawMessage(`"not an outcome"`)},
	} {
		if err := seed.Add(e); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	retryer, err := retry.NewRetryer(retry.Config{Enabled: true, DeadLetterFile: path})
	if err != nil {
		t.Fatalf("NewRetryer failed: %v", err)
	}
	rt.Retry = retryer

	mr := miniredis.RunT(t)
	err = ResendDeadLetters(context.Background(), rt, nil, &resultlog.Config{Address: mr.Addr()})
	if err == nil || !strings.Contains(err.Error(), "2 message(s)") {
		t.Fatalf("Expected 2 failed resends, got %v", err)
	}
	if !strings.Contains(out.String(), "Resent 1 message(s), 2 left") {
		t.Errorf("Unexpected report: %q", out.String())
	}

	raw, err := mr.Get(resultlog.StateKey("orders"))
	if err != nil {
		t.Fatalf("State key not set: %v", err)
	}
	var outcome resultlog.Outcome
	if err := json.Unmarshal([]byte(raw), &outcome); err != nil || outcome.Rows != 7 {
		t.Errorf("Unexpected stored outcome %q: %v", raw, err)
	}

	// оставшиеся записи сохранены в файле
	reopened, err := retry.OpenDeadLetters(path, 0)
	if err != nil {
		t.Fatalf("OpenDeadLetters failed: %v", err)
	}
	left := reopened.Entries()
	if len(left) != 2 || left[0].Target != "broker" || left[1].Key != "broken" {
		t.Errorf("Unexpected remaining entries: %+v", left)
	}
}

func TestResendDeadLetters_Disabled(t *testing.T) {
	rt, _ := newTestRuntime(t)
	if err := ResendDeadLetters(context.Background(), rt, nil, nil); err == nil {
		t.Error("Expected error without dead letter file")
	}
}
