package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/adamwoolhether/adminapi/api"
	"github.com/adamwoolhether/adminapi/client"
	"github.com/adamwoolhether/adminapi/session"
)

const goodToken = "tok-1"

// backend is a small in-memory admin API.
type backend struct {
	mu     sync.Mutex
	users  map[int64]api.User
	nextID int64

	sessionCalls int
	lastAuth     string
	lastEnhance  map[string]any

	tasks      map[int64]*api.AnalysisTask
	nextTaskID int64
	taskPolls  int
}

func (b *backend) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST "+api.PathLogin, func(w http.ResponseWriter, r *http.Request) {
		var req api.LoginRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Password != "secret" {
			problem(w, http.StatusUnauthorized, "bad credentials")
			return
		}
		fmt.Fprintf(w, `{"token":%q,"username":%q,"role":"ADMIN"}`, goodToken, req.Username)
	})

	mux.HandleFunc("GET "+api.PathSession, func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.sessionCalls++
		b.mu.Unlock()
		if r.Header.Get("Authorization") != "Bearer "+goodToken {
			problem(w, http.StatusUnauthorized, "session expired")
			return
		}
		fmt.Fprint(w, `{"username":"ada","role":"ADMIN"}`)
	})

	mux.HandleFunc("GET "+api.PathUsers, func(w http.ResponseWriter, r *http.Request) {
		if !b.authorized(w, r) {
			return
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		users := make([]api.User, 0, len(b.users))
		for id := int64(1); id <= b.nextID; id++ {
			if u, ok := b.users[id]; ok {
				users = append(users, u)
			}
		}
		json.NewEncoder(w).Encode(users)
	})

	mux.HandleFunc("POST "+api.PathUsers, func(w http.ResponseWriter, r *http.Request) {
		if !b.authorized(w, r) {
			return
		}
		var req api.CreateUserRequest
		json.NewDecoder(r.Body).Decode(&req)

		b.mu.Lock()
		defer b.mu.Unlock()
		for _, u := range b.users {
			if u.Username == req.Username {
				problem(w, http.StatusConflict, "username already exists")
				return
			}
		}
		b.nextID++
		u := api.User{ID: b.nextID, Username: req.Username, Role: req.Role}
		b.users[u.ID] = u
		json.NewEncoder(w).Encode(u)
	})

	mux.HandleFunc("PUT "+api.PathUsers+"/{id}", func(w http.ResponseWriter, r *http.Request) {
		if !b.authorized(w, r) {
			return
		}
		id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
		var req api.UpdateUserRequest
		json.NewDecoder(r.Body).Decode(&req)

		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.users[id]; !ok {
			problem(w, http.StatusNotFound, "user not found")
			return
		}
		u := api.User{ID: id, Username: req.Username, Role: req.Role}
		b.users[id] = u
		json.NewEncoder(w).Encode(u)
	})

	mux.HandleFunc("DELETE "+api.PathUsers+"/{id}", func(w http.ResponseWriter, r *http.Request) {
		if !b.authorized(w, r) {
			return
		}
		id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
		b.mu.Lock()
		delete(b.users, id)
		b.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("POST "+api.PathEnhance, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		b.mu.Lock()
		b.lastEnhance = body
		b.mu.Unlock()

		w.Header().Set("Content-Type", "text/event-stream")
		if body["originalRequirement"] == "empty stream please" {
			w.WriteHeader(http.StatusOK)
			return
		}
		if body["originalRequirement"] == "blank output please" {
			fmt.Fprint(w, "data:   \n\ndata: [DONE]\n\n")
			return
		}
		fmt.Fprint(w, "data:  The system shall\n\ndata:  export tables.\n\ndata: [DONE]\n\n")
	})

	mux.HandleFunc("POST "+api.PathExportTable, func(w http.ResponseWriter, r *http.Request) {
		var req api.ExportTableRequest
		json.NewDecoder(r.Body).Decode(&req)
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		fmt.Fprintf(w, "rows=%d", len(req.Processes))
	})

	mux.HandleFunc("POST "+api.PathImportProcesses, func(w http.ResponseWriter, r *http.Request) {
		f, hdr, err := r.FormFile("file")
		if err != nil {
			problem(w, http.StatusBadRequest, "file is required")
			return
		}
		defer f.Close()
		content, _ := io.ReadAll(f)
		fmt.Fprintf(w, `{"functionalProcesses":[{"description":%q},{"description":%q}]}`, hdr.Filename, string(content))
	})

	mux.HandleFunc("POST "+api.PathAnalysisTask, func(w http.ResponseWriter, r *http.Request) {
		if !b.authorized(w, r) {
			return
		}
		var req api.AnalysisRequest
		json.NewDecoder(r.Body).Decode(&req)

		b.mu.Lock()
		defer b.mu.Unlock()
		b.nextTaskID++
		task := &api.AnalysisTask{
			TaskID:              b.nextTaskID,
			Status:              api.TaskPending,
			FunctionalProcesses: req.FunctionalProcesses,
			CreatedTime:         "2026-10-19T10:00:00",
		}
		b.tasks[task.TaskID] = task
		json.NewEncoder(w).Encode(task)
	})

	mux.HandleFunc("GET "+api.PathAnalysisTasks, func(w http.ResponseWriter, r *http.Request) {
		if !b.authorized(w, r) {
			return
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		tasks := make([]api.AnalysisTask, 0, len(b.tasks))
		for id := int64(1); id <= b.nextTaskID; id++ {
			tasks = append(tasks, *b.tasks[id])
		}
		json.NewEncoder(w).Encode(tasks)
	})

	// Each poll moves a task one step: PENDING, RUNNING, then done.
	mux.HandleFunc("GET "+api.PathAnalysisTasks+"/{id}", func(w http.ResponseWriter, r *http.Request) {
		if !b.authorized(w, r) {
			return
		}
		id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)

		b.mu.Lock()
		defer b.mu.Unlock()
		task, ok := b.tasks[id]
		if !ok {
			problem(w, http.StatusNotFound, "task not found")
			return
		}
		b.taskPolls++

		switch task.Status {
		case api.TaskPending:
			task.Status = api.TaskRunning
		case api.TaskRunning:
			if task.FunctionalProcesses[0].Description == "doomed" {
				task.Status = api.TaskFailed
				task.ErrorMessage = "model unavailable"
				break
			}
			task.Status = api.TaskSucceeded
			for _, fp := range task.FunctionalProcesses {
				task.Processes = append(task.Processes, api.Process{
					TriggerEvent:      "user request",
					FunctionalProcess: fp.Description,
					DataMovementType:  "E",
					DataGroup:         "input",
				})
			}
			task.ProcessCount = len(task.Processes)
		}
		json.NewEncoder(w).Encode(task)
	})

	return mux
}

func (b *backend) authorized(w http.ResponseWriter, r *http.Request) bool {
	b.mu.Lock()
	b.lastAuth = r.Header.Get("Authorization")
	b.mu.Unlock()

	if r.Header.Get("Authorization") != "Bearer "+goodToken {
		problem(w, http.StatusUnauthorized, "missing token")
		return false
	}
	return true
}

func (b *backend) polls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.taskPolls
}

func (b *backend) snapshot() (sessionCalls int, lastAuth string, lastEnhance map[string]any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sessionCalls, b.lastAuth, b.lastEnhance
}

func problem(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	fmt.Fprintf(w, `{"title":%q,"status":%d,"detail":%q}`, http.StatusText(status), status, detail)
}

type fixture struct {
	svc      *api.Service
	sess     *session.Session
	backend  *backend
	notified []string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	b := &backend{users: map[int64]api.User{}, tasks: map[int64]*api.AnalysisTask{}}
	ts := httptest.NewServer(b.routes())
	t.Cleanup(ts.Close)

	logger := slog.New(slog.DiscardHandler)

	sess, err := session.New(&session.MemoryStore{}, logger)
	if err != nil {
		t.Fatal(err)
	}

	f := &fixture{sess: sess, backend: b}
	guard := session.NewGuard(sess,
		session.WithGuardLogger(logger),
		session.WithNotifier(session.NotifyFunc(func(_ context.Context, msg string) {
			f.notified = append(f.notified, msg)
		})),
	)

	c, err := client.Build(
		client.WithBaseURL(ts.URL),
		client.WithLogger(logger),
		client.WithTokenSource(sess),
		client.WithUnauthorizedHandler(guard),
	)
	if err != nil {
		t.Fatal(err)
	}

	f.svc, err = api.New(c, sess)
	if err != nil {
		t.Fatal(err)
	}

	return f
}

func (f *fixture) login(t *testing.T) {
	t.Helper()

	if _, err := f.svc.Auth.Login(t.Context(), api.LoginRequest{Username: "ada", Password: "secret"}); err != nil {
		t.Fatalf("login: %v", err)
	}
}

func TestNew(t *testing.T) {
	sess, _ := session.New(&session.MemoryStore{}, nil)
	c, _ := client.Build()

	if _, err := api.New(nil, sess); err == nil {
		t.Error("expected error for nil client")
	}
	if _, err := api.New(c, nil); err == nil {
		t.Error("expected error for nil session")
	}
}

func TestUserPath(t *testing.T) {
	if got := api.UserPath(42); got != "/api/admin/users/42" {
		t.Errorf("got %q", got)
	}
}

func TestAuth_Login(t *testing.T) {
	f := newFixture(t)

	creds, err := f.svc.Auth.Login(t.Context(), api.LoginRequest{Username: "ada", Password: "secret"})
	if err != nil {
		t.Fatal(err)
	}

	want := session.Credentials{Token: goodToken, Username: "ada", Role: "ADMIN"}
	if diff := cmp.Diff(want, creds); diff != "" {
		t.Errorf("credentials mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, f.sess.Credentials()); diff != "" {
		t.Errorf("session mismatch (-want +got):\n%s", diff)
	}
}

func TestAuth_LoginRejected(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Auth.Login(t.Context(), api.LoginRequest{Username: "ada", Password: "wrong"})

	e, ok := client.AsError(err)
	if !ok {
		t.Fatalf("expected *client.Error, got %v", err)
	}
	if e.Kind != client.KindUnauthorized || e.Message != "bad credentials" {
		t.Errorf("got %s %q", e.Kind, e.Message)
	}
	if len(f.notified) != 0 {
		t.Errorf("login failure must not notify: %v", f.notified)
	}
	if f.sess.Token() != "" {
		t.Error("token stored after failed login")
	}
}

func TestAuth_LoginValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Auth.Login(t.Context(), api.LoginRequest{Username: "ada"})

	fields, ok := errors.AsType[client.FieldErrors](err)
	if !ok {
		t.Fatalf("expected FieldErrors, got %v", err)
	}
	if _, ok := fields.Fields()["password"]; !ok {
		t.Errorf("expected password field error, got %v", fields.Fields())
	}
}

func TestAuth_SessionBacksValidator(t *testing.T) {
	f := newFixture(t)
	f.login(t)

	v := session.NewValidator(f.sess, f.svc.Auth.Session)

	for range 3 {
		p, err := v.Ensure(t.Context())
		if err != nil {
			t.Fatal(err)
		}
		if p.Username != "ada" || p.Role != "ADMIN" {
			t.Errorf("profile = %+v", p)
		}
	}
	if calls, _, _ := f.backend.snapshot(); calls != 1 {
		t.Errorf("session endpoint called %d times, want 1", calls)
	}

	// A stale token fails validation and clears the session without
	// running the redirect hook.
	if err := f.svc.Auth.Logout(); err != nil {
		t.Fatal(err)
	}
	if err := f.sess.Login(session.Credentials{Token: "stale"}); err != nil {
		t.Fatal(err)
	}

	_, err := v.Ensure(t.Context())
	if !errors.Is(err, client.ErrUnauthorized) {
		t.Fatalf("expected %v, got %v", client.ErrUnauthorized, err)
	}
	if f.sess.Token() != "" {
		t.Error("stale token kept")
	}
	if len(f.notified) != 0 {
		t.Errorf("validator must not notify: %v", f.notified)
	}
}

func TestUsers_CRUD(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	ctx := t.Context()

	created, err := f.svc.Users.Create(ctx, api.CreateUserRequest{Username: "grace", Password: "hopper1", Role: "USER"})
	if err != nil {
		t.Fatal(err)
	}
	if created.ID == 0 || created.Username != "grace" {
		t.Fatalf("created = %+v", created)
	}
	if _, auth, _ := f.backend.snapshot(); auth != "Bearer "+goodToken {
		t.Errorf("authorization = %q", auth)
	}

	_, err = f.svc.Users.Create(ctx, api.CreateUserRequest{Username: "grace", Password: "hopper1", Role: "USER"})
	if !errors.Is(err, client.ErrClientError) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if e, _ := client.AsError(err); e.Message != "username already exists" {
		t.Errorf("message = %q", e.Message)
	}

	updated, err := f.svc.Users.Update(ctx, created.ID, api.UpdateUserRequest{Username: "grace", Role: "ADMIN"})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Role != "ADMIN" {
		t.Errorf("role = %q", updated.Role)
	}

	users, err := f.svc.Users.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]api.User{updated}, users); diff != "" {
		t.Errorf("users mismatch (-want +got):\n%s", diff)
	}

	if err := f.svc.Users.Delete(ctx, created.ID); err != nil {
		t.Fatal(err)
	}
	users, err = f.svc.Users.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 0 {
		t.Errorf("users after delete = %+v", users)
	}
}

func TestUsers_Validation(t *testing.T) {
	f := newFixture(t)
	f.login(t)

	testCases := map[string]struct {
		req       any
		wantField string
	}{
		"short username": {req: api.CreateUserRequest{Username: "ab", Password: "secret1", Role: "USER"}, wantField: "username"},
		"short password": {req: api.CreateUserRequest{Username: "abc", Password: "123", Role: "USER"}, wantField: "password"},
		"bad role":       {req: api.CreateUserRequest{Username: "abc", Password: "secret1", Role: "ROOT"}, wantField: "role"},
		"update password": {
			req:       api.UpdateUserRequest{Username: "abc", Password: "123", Role: "USER"},
			wantField: "password",
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			var err error
			switch req := tc.req.(type) {
			case api.CreateUserRequest:
				_, err = f.svc.Users.Create(t.Context(), req)
			case api.UpdateUserRequest:
				_, err = f.svc.Users.Update(t.Context(), 1, req)
			}

			fields, ok := errors.AsType[client.FieldErrors](err)
			if !ok {
				t.Fatalf("expected FieldErrors, got %v", err)
			}
			if _, ok := fields.Fields()[tc.wantField]; !ok {
				t.Errorf("expected %s error, got %v", tc.wantField, fields.Fields())
			}
		})
	}
}

func TestUsers_UnauthorizedRunsGuard(t *testing.T) {
	f := newFixture(t)
	if err := f.sess.Login(session.Credentials{Token: "revoked"}); err != nil {
		t.Fatal(err)
	}

	_, err := f.svc.Users.List(t.Context())
	if !errors.Is(err, client.ErrUnauthorized) {
		t.Fatalf("expected %v, got %v", client.ErrUnauthorized, err)
	}
	if f.sess.Token() != "" {
		t.Error("session not cleared")
	}
	if len(f.notified) != 1 {
		t.Errorf("notified %d times, want 1", len(f.notified))
	}
}

func TestRequirements_Enhance(t *testing.T) {
	f := newFixture(t)
	f.login(t)

	count := 3
	var deltas []string
	text, err := f.svc.Requirements.Enhance(t.Context(),
		api.EnhanceRequest{OriginalRequirement: "export process tables", ExpectedProcessCount: &count},
		func(delta, _ string) { deltas = append(deltas, delta) },
	)
	if err != nil {
		t.Fatal(err)
	}

	if text != "The system shall export tables." {
		t.Errorf("text = %q", text)
	}
	if diff := cmp.Diff([]string{" The system shall", " export tables."}, deltas); diff != "" {
		t.Errorf("deltas mismatch (-want +got):\n%s", diff)
	}

	want := map[string]any{"originalRequirement": "export process tables", "expectedProcessCount": float64(3)}
	_, _, got := f.backend.snapshot()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("request mismatch (-want +got):\n%s", diff)
	}
}

func TestRequirements_EnhanceFallsBack(t *testing.T) {
	f := newFixture(t)
	f.login(t)

	text, err := f.svc.Requirements.Enhance(t.Context(), api.EnhanceRequest{OriginalRequirement: "blank output please"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if text != "blank output please" {
		t.Errorf("text = %q", text)
	}
	if _, _, got := f.backend.snapshot(); got["expectedProcessCount"] != nil {
		t.Error("unset process count was sent")
	}
}

func TestRequirements_EnhanceEmptyStream(t *testing.T) {
	f := newFixture(t)
	f.login(t)

	var calls int
	text, err := f.svc.Requirements.Enhance(t.Context(), api.EnhanceRequest{OriginalRequirement: "empty stream please"}, func(delta, full string) {
		calls++
	})
	if err != nil {
		t.Fatalf("empty stream must fall back, got %v", err)
	}
	if text != "empty stream please" {
		t.Errorf("text = %q", text)
	}
	if calls != 0 {
		t.Errorf("callbacks = %d, want 0", calls)
	}
}

func TestRequirements_EnhanceValidation(t *testing.T) {
	f := newFixture(t)

	zero := 0
	testCases := map[string]struct {
		req       api.EnhanceRequest
		wantField string
	}{
		"empty":      {req: api.EnhanceRequest{}, wantField: "originalRequirement"},
		"too short":  {req: api.EnhanceRequest{OriginalRequirement: "abcd"}, wantField: "originalRequirement"},
		"too long":   {req: api.EnhanceRequest{OriginalRequirement: strings.Repeat("x", 5001)}, wantField: "originalRequirement"},
		"zero count": {req: api.EnhanceRequest{OriginalRequirement: "valid text", ExpectedProcessCount: &zero}, wantField: "expectedProcessCount"},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.Requirements.Enhance(t.Context(), tc.req, nil)

			fields, ok := errors.AsType[client.FieldErrors](err)
			if !ok {
				t.Fatalf("expected FieldErrors, got %v", err)
			}
			if _, ok := fields.Fields()[tc.wantField]; !ok {
				t.Errorf("expected %s error, got %v", tc.wantField, fields.Fields())
			}
		})
	}
}

func TestRequirements_ExportTable(t *testing.T) {
	f := newFixture(t)
	f.login(t)

	req := api.ExportTableRequest{Processes: []api.Process{{
		TriggerEvent:      "user submits form",
		FunctionalProcess: "create order",
		DataMovementType:  "E",
		DataGroup:         "order",
	}}}

	dir := t.TempDir()
	dest, err := f.svc.Requirements.ExportTable(t.Context(), req, dir)
	if err != nil {
		t.Fatal(err)
	}
	if dest != filepath.Join(dir, api.DefaultExportName) {
		t.Errorf("dest = %q", dest)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "rows=1" {
		t.Errorf("content = %q", got)
	}
}

func TestRequirements_ExportTableValidation(t *testing.T) {
	f := newFixture(t)

	testCases := map[string]api.ExportTableRequest{
		"no rows":      {},
		"missing data": {Processes: []api.Process{{TriggerEvent: "t", FunctionalProcess: "p", DataMovementType: "E"}}},
	}

	for name, req := range testCases {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			_, err := f.svc.Requirements.ExportTable(t.Context(), req, dir)
			if _, ok := errors.AsType[client.FieldErrors](err); !ok {
				t.Fatalf("expected FieldErrors, got %v", err)
			}
			entries, _ := os.ReadDir(dir)
			if len(entries) != 0 {
				t.Errorf("dir has %d entries", len(entries))
			}
		})
	}
}

func TestRequirements_ImportProcesses(t *testing.T) {
	f := newFixture(t)
	f.login(t)

	res, err := f.svc.Requirements.ImportProcesses(t.Context(), "processes.xlsx", strings.NewReader("sheet"))
	if err != nil {
		t.Fatal(err)
	}

	want := api.ImportResult{FunctionalProcesses: []api.FunctionalProcess{
		{Description: "processes.xlsx"},
		{Description: "sheet"},
	}}
	if diff := cmp.Diff(want, res); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}

	if _, err := f.svc.Requirements.ImportProcesses(t.Context(), "x.xlsx", nil); err == nil {
		t.Error("expected error for nil source")
	}
}

func TestAnalysisTaskPath(t *testing.T) {
	if got := api.AnalysisTaskPath(7); got != "/api/cosmic/analyze/tasks/7" {
		t.Errorf("got %q", got)
	}
}

func TestRequirements_Analysis(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	ctx := t.Context()

	req := api.AnalysisRequest{FunctionalProcesses: []api.FunctionalProcess{
		{Description: "user exports table"},
		{Description: "user imports workbook"},
	}}

	task, err := f.svc.Requirements.SubmitAnalysis(ctx, req)
	if err != nil {
		t.Fatal(err)
	}
	if task.TaskID != 1 || task.Status != api.TaskPending {
		t.Fatalf("submitted task = %+v", task)
	}
	if task.Status.Done() {
		t.Error("pending task reported done")
	}

	got, err := f.svc.Requirements.WaitAnalysis(ctx, task.TaskID, time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != api.TaskSucceeded {
		t.Errorf("status = %s", got.Status)
	}
	if got.ProcessCount != 2 || len(got.Processes) != 2 {
		t.Errorf("processes = %d/%d, want 2", got.ProcessCount, len(got.Processes))
	}
	if got.Processes[1].FunctionalProcess != "user imports workbook" {
		t.Errorf("second process = %+v", got.Processes[1])
	}
	if polls := f.backend.polls(); polls != 2 {
		t.Errorf("polls = %d, want 2", polls)
	}

	tasks, err := f.svc.Requirements.AnalysisTasks(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]api.AnalysisTask{got}, tasks); diff != "" {
		t.Errorf("task list mismatch (-want +got):\n%s", diff)
	}
}

func TestRequirements_AnalysisFailed(t *testing.T) {
	f := newFixture(t)
	f.login(t)

	task, err := f.svc.Requirements.SubmitAnalysis(t.Context(), api.AnalysisRequest{
		FunctionalProcesses: []api.FunctionalProcess{{Description: "doomed"}},
	})
	if err != nil {
		t.Fatal(err)
	}

	got, err := f.svc.Requirements.WaitAnalysis(t.Context(), task.TaskID, time.Millisecond)
	if !errors.Is(err, api.ErrAnalysisFailed) {
		t.Fatalf("expected %v, got %v", api.ErrAnalysisFailed, err)
	}
	if !strings.Contains(err.Error(), "model unavailable") {
		t.Errorf("error lacks backend message: %v", err)
	}
	if got.Status != api.TaskFailed {
		t.Errorf("status = %s", got.Status)
	}
}

func TestRequirements_AnalysisTaskMissing(t *testing.T) {
	f := newFixture(t)
	f.login(t)

	_, err := f.svc.Requirements.WaitAnalysis(t.Context(), 99, time.Millisecond)
	if !errors.Is(err, client.ErrClientError) {
		t.Fatalf("expected %v, got %v", client.ErrClientError, err)
	}
	e, _ := client.AsError(err)
	if e.Detail != "task not found" {
		t.Errorf("detail = %q", e.Detail)
	}
}

func TestRequirements_AnalysisWaitCancelled(t *testing.T) {
	f := newFixture(t)
	f.login(t)

	task, err := f.svc.Requirements.SubmitAnalysis(t.Context(), api.AnalysisRequest{
		FunctionalProcesses: []api.FunctionalProcess{{Description: "slow"}},
	})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err = f.svc.Requirements.WaitAnalysis(ctx, task.TaskID, time.Hour)
	if !errors.Is(err, client.ErrCanceled) {
		t.Fatalf("expected %v, got %v", client.ErrCanceled, err)
	}
}

func TestRequirements_AnalysisValidation(t *testing.T) {
	f := newFixture(t)

	testCases := map[string]struct {
		req       api.AnalysisRequest
		wantField string
	}{
		"no processes":      {req: api.AnalysisRequest{}, wantField: "functionalProcesses"},
		"blank description": {req: api.AnalysisRequest{FunctionalProcesses: []api.FunctionalProcess{{}}}, wantField: "description"},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.Requirements.SubmitAnalysis(t.Context(), tc.req)

			fields, ok := errors.AsType[client.FieldErrors](err)
			if !ok {
				t.Fatalf("expected FieldErrors, got %v", err)
			}
			if _, ok := fields.Fields()[tc.wantField]; !ok {
				t.Errorf("expected %s error, got %v", tc.wantField, fields.Fields())
			}
		})
	}
}
