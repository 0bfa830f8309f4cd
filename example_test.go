package adminapi_test

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"

	"github.com/adamwoolhether/adminapi"
	"github.com/adamwoolhether/adminapi/api"
	"github.com/adamwoolhether/adminapi/client"
	"github.com/adamwoolhether/adminapi/session"
)

func ExampleNewService() {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case api.PathLogin:
			fmt.Fprint(w, `{"token":"t-1","username":"ada","role":"ADMIN"}`)
		case api.PathUsers:
			if r.Header.Get("Authorization") != "Bearer t-1" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			fmt.Fprint(w, `[{"id":1,"username":"ada","role":"ADMIN"}]`)
		}
	}))
	defer ts.Close()

	logger := slog.New(slog.DiscardHandler)
	sess, _ := session.New(&session.MemoryStore{}, logger)
	guard := session.NewGuard(sess, session.WithGuardLogger(logger))

	svc, err := adminapi.NewService(sess, guard, client.WithBaseURL(ts.URL), client.WithLogger(logger))
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	ctx := context.Background()
	if _, err := svc.Auth.Login(ctx, api.LoginRequest{Username: "ada", Password: "secret"}); err != nil {
		fmt.Println("error:", err)
		return
	}

	users, err := svc.Users.List(ctx)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Println(len(users), users[0].Username)
	// Output: 1 ada
}
