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

package hostapi

import (
	"golang.org/x/time/rate"

	"github.com/sirupsen/logrus"

	"github.com/nanosoldier/bot/pkg/config"
	"github.com/nanosoldier/bot/pkg/github"
)

// defaultRequestRate keeps webhook bursts from exhausting a personal
// access token's hourly quota; the hosting API's own rate-limit
// headers are the authority, this is a client-side backstop.
const defaultRequestRate rate.Limit = 5

// NewClient builds the hosting-API client nanosoldier's webhook
// handler, reference resolver, and reply channel share, authenticated
// from the loaded configuration. When an app identity is configured,
// a short-lived app JWT is minted per spec.md section 6's optional
// app-auth mode; otherwise AuthToken is used as a plain token.
func NewClient(cfg *config.Config) *github.Client {
	token := cfg.AuthToken
	if cfg.AppID != "" && cfg.AppPrivateKey != "" {
		signed, err := MintAppJWT(cfg.AppID, []byte(cfg.AppPrivateKey))
		if err != nil {
			logrus.WithError(err).Error("minting hosting-app JWT, falling back to auth token")
		} else {
			token = signed
		}
	}
	return github.NewClient(token, defaultRequestRate)
}
