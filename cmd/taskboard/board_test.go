package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"taskboard/internal/models"
)

func fakeAPI(t *testing.T) *httptest.Server {
	t.Helper()
	project := models.Project{ID: 1, Name: "Launch", Tasks: []models.Task{
		{ID: 1, Title: "Alpha", Status: models.StatusTodo, Priority: models.PriorityHigh, ProjectID: 1},
		{ID: 2, Title: "Beta", Status: models.StatusTodo, Priority: models.PriorityLow, ProjectID: 1},
	}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/projects/1":
			_ = json.NewEncoder(w).Encode(project)
		case r.Method == http.MethodPatch && r.URL.Path == "/tasks/1":
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{}`))
		case r.Method == http.MethodPatch && r.URL.Path == "/tasks/2":
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":{"code":"internal_error","message":"boom"}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestBoardMoveRollsBackFailedMove(t *testing.T) {
	t.Setenv("TASKBOARD_TOKEN", "tok")
	t.Setenv("TASKBOARD_EMAIL", "")
	srv := fakeAPI(t)

	cmd := boardCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs([]string{"move", "--api", srv.URL, "-p", "1", "1", "DONE", "2", "IN_PROGRESS"})

	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "1 move(s) failed") {
		t.Fatalf("err = %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "TODO (1)") || !strings.Contains(got, "DONE (1)") || !strings.Contains(got, "IN PROGRESS (0)") {
		t.Fatalf("columns:\n%s", got)
	}
	if !strings.Contains(errOut.String(), "failed to move task 2") {
		t.Fatalf("stderr = %s", errOut.String())
	}
}

func TestBoardMoveOntoOwnColumnSendsNothing(t *testing.T) {
	t.Setenv("TASKBOARD_TOKEN", "tok")
	t.Setenv("TASKBOARD_EMAIL", "")
	srv := fakeAPI(t)

	cmd := boardCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	// task 2 sits in TODO, and so does task 1
	cmd.SetArgs([]string{"move", "--api", srv.URL, "-p", "1", "2", "1"})

	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "task 2: already in place") {
		t.Fatalf("out = %s", out.String())
	}
}

func TestBoardDeleteDeclined(t *testing.T) {
	t.Setenv("TASKBOARD_TOKEN", "tok")
	t.Setenv("TASKBOARD_EMAIL", "")
	srv := fakeAPI(t)

	cmd := boardCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetIn(strings.NewReader("n\n"))
	cmd.SetArgs([]string{"delete", "--api", srv.URL, "-p", "1", "1"})

	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out.String(), "deleted") || !strings.Contains(out.String(), "TODO (2)") {
		t.Fatalf("out = %s", out.String())
	}
}
