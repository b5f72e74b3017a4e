// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package healthcheck reports batch job status to healthchecks.io
package healthcheck

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/gosimple/slug"
	"github.com/penny-vault/pvmetrics/pkginfo"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

const (
	managementURL = "https://healthchecks.io"
	pingURL       = "https://hc-ping.com"
)

var (
	ErrStatus      = errors.New("status code is invalid")
	ErrNotEnabled  = errors.New("healthchecks ping key is not configured")
	ErrMissingName = errors.New("check name is required")
)

type createReq struct {
	Name        string   `json:"name"`
	Description string   `json:"desc,omitempty"`
	Grace       int      `json:"grace"`
	Schedule    string   `json:"schedule"`
	Slug        string   `json:"slug"`
	Tags        string   `json:"tags"`
	Timezone    string   `json:"tz"`
	Unique      []string `json:"unique"`
}

type createResp struct {
	PingURL string `json:"ping_url"`
	UUID    string `json:"uuid"`
}

// Client manages checks with the healthchecks.io management API and pings
// them by slug
type Client struct {
	apiKey  string
	pingKey string
	api     *resty.Client
	ping    *resty.Client
}

func New(apiKey, pingKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		pingKey: pingKey,
		api:     resty.New().SetHeader("User-Agent", pkginfo.UserAgent()).SetBaseURL(managementURL),
		ping:    resty.New().SetHeader("User-Agent", pkginfo.UserAgent()).SetBaseURL(pingURL),
	}
}

// NewFromConfig reads healthchecks.apikey and healthchecks.ping_key
func NewFromConfig() *Client {
	return New(viper.GetString("healthchecks.apikey"), viper.GetString("healthchecks.ping_key"))
}

// WithURLs points the client at different management and ping hosts
func (client *Client) WithURLs(apiURL, pingURL string) *Client {
	client.api.SetBaseURL(apiURL)
	client.ping.SetBaseURL(pingURL)
	return client
}

// Enabled reports whether the client can ping checks
func (client *Client) Enabled() bool {
	return client.pingKey != ""
}

// Slug converts a check name into the slug used in ping URLs
func Slug(name string) string {
	return slug.Make(name)
}

// Create registers a cron-scheduled check and returns its id. An existing
// check with the same name is returned instead of creating a duplicate.
func (client *Client) Create(ctx context.Context, name string, tags []string, schedule string) (string, error) {
	if name == "" {
		return "", ErrMissingName
	}

	command := createReq{
		Name:     name,
		Slug:     Slug(name),
		Tags:     strings.Join(tags, " "),
		Grace:    3600,
		Schedule: schedule,
		Timezone: "America/New_York",
		Unique:   []string{"name"},
	}

	result := createResp{}

	resp, err := client.api.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("X-Api-Key", client.apiKey).
		SetBody(command).
		SetResult(&result).
		Post("/api/v3/checks/")

	if err != nil {
		return "", err
	}

	if resp.StatusCode() > 201 {
		return "", fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode())
	}

	if result.UUID != "" {
		return result.UUID, nil
	}

	checkID := strings.Split(result.PingURL, "/")
	healthCheckID := checkID[len(checkID)-1]

	return healthCheckID, nil
}

// Start signals that the job named name has started
func (client *Client) Start(ctx context.Context, name string) error {
	return client.send(ctx, name, "/start", "")
}

// Success signals that the job finished; body is attached to the ping
func (client *Client) Success(ctx context.Context, name string, body string) error {
	return client.send(ctx, name, "", body)
}

// Fail signals that the job failed; body is attached to the ping
func (client *Client) Fail(ctx context.Context, name string, body string) error {
	return client.send(ctx, name, "/fail", body)
}

func (client *Client) send(ctx context.Context, name, suffix, body string) error {
	logger := zerolog.Ctx(ctx)

	if !client.Enabled() {
		return ErrNotEnabled
	}

	if name == "" {
		return ErrMissingName
	}

	path := fmt.Sprintf("/%s/%s%s", client.pingKey, Slug(name), suffix)
	resp, err := client.ping.R().
		SetContext(ctx).
		SetQueryParam("create", "1").
		SetBody(body).
		Post(path)

	if err != nil {
		logger.Error().Err(err).Str("Check", name).Msg("healthchecks ping failed")
		return err
	}

	if resp.StatusCode() != 200 && resp.StatusCode() != 201 {
		return fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode())
	}

	return nil
}
