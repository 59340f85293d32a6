/*
Copyright 2026 The Nanosoldier Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package github

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestBranchHeadSHA(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/JuliaLang/julia/branches/master" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(Branch{SHA: "abc123"})
	}))
	defer srv.Close()

	c := NewClient("tok", 0)
	c.baseURL = srv.URL

	sha, err := c.BranchHeadSHA(context.Background(), "JuliaLang/julia", "master")
	if err != nil {
		t.Fatalf("BranchHeadSHA: %v", err)
	}
	if sha != "abc123" {
		t.Errorf("sha = %q, want abc123", sha)
	}
}

func TestCreateStatusSendsExpectedBody(t *testing.T) {
	t.Parallel()

	var got statusRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := NewClient("tok", 0)
	c.baseURL = srv.URL

	if err := c.CreateStatus(context.Background(), "JuliaLang/julia", "abc123", StatusPending, "nanosoldier", "accepted BenchmarkJob", ""); err != nil {
		t.Fatalf("CreateStatus: %v", err)
	}
	if got.State != StatusPending || got.Context != "nanosoldier" {
		t.Errorf("got %+v", got)
	}
}
