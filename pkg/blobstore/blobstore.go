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

// Package blobstore uploads package-eval logs and, when configured,
// rendered HTML reports to an S3-compatible object store. Without a
// bucket configured, LocalStore writes these artifacts under a local
// directory instead.
package blobstore

import "context"

// Store puts an object and returns the URL it is reachable at. public
// requests a public-read ACL, used for package-eval logs (spec.md
// section 4.6's "Log storage").
type Store interface {
	Put(ctx context.Context, key string, body []byte, contentType string, public bool) (url string, err error)
}
