package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/mlefranc/crm-actions/model"
)

// Client is the persistence gateway: it submits merged payloads to the
// actions API with bearer-token auth. Retries on failure are the
// caller's responsibility.
type Client struct {
	base  string
	token string
	http  *http.Client
}

func New(base, token string) *Client {
	return &Client{
		base:  strings.TrimRight(base, "/"),
		token: token,
		http:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) Create(ctx context.Context, payload model.Payload) (int64, error) {
	var created struct {
		ID int64 `json:"id"`
	}
	err := c.do(ctx, http.MethodPost, "/actions", payload, &created)
	if err != nil {
		return 0, err
	}
	return created.ID, nil
}

func (c *Client) Update(ctx context.Context, id int64, payload model.Payload) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/actions/%d", id), payload, nil)
}

func (c *Client) Get(ctx context.Context, id int64) (rec model.Action, err error) {
	err = c.do(ctx, http.MethodGet, fmt.Sprintf("/actions/%d", id), nil, &rec)
	return
}

// Lookups fetches one reference-data list (pays, secteurs, initiateurs,
// binomes) for the sub-forms to populate their select fields.
func (c *Client) Lookups(ctx context.Context, kind string) (items []model.LookupItem, err error) {
	err = c.do(ctx, http.MethodGet, "/lookups/"+kind, nil, &items)
	return
}

// UploadAttachment sends the single PDF attachment of an
// attachment-bearing action. The stored name embeds a timestamp so a
// re-uploaded file never hits a cached copy on retrieval.
func (c *Client) UploadAttachment(ctx context.Context, id int64, filename string, file io.Reader) (stored string, err error) {
	stored = TimestampName(filename)

	body := &bytes.Buffer{}
	form := multipart.NewWriter(body)
	part, err := form.CreateFormFile("file", stored)
	if err != nil {
		return "", errors.Wrap(err, "gateway.upload.form")
	}
	if _, err = io.Copy(part, file); err != nil {
		return "", errors.Wrap(err, "gateway.upload.copy")
	}
	if err = form.Close(); err != nil {
		return "", errors.Wrap(err, "gateway.upload.close")
	}

	url := fmt.Sprintf("%s/actions/%d/attachment", c.base, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return "", errors.Wrap(err, "gateway.upload.request")
	}
	req.Header.Set("content-type", form.FormDataContentType())
	req.Header.Set("authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "gateway.upload")
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return "", err
	}
	return stored, nil
}

// TimestampName rewrites base.pdf to base_<unix>.pdf.
func TimestampName(filename string) string {
	ext := path.Ext(filename)
	base := strings.TrimSuffix(filename, ext)
	return fmt.Sprintf("%s_%d%s", base, time.Now().Unix(), ext)
}

func (c *Client) do(ctx context.Context, method, route string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return errors.Wrap(err, "gateway.encode")
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+route, body)
	if err != nil {
		return errors.Wrap(err, "gateway.request")
	}
	if payload != nil {
		req.Header.Set("content-type", "application/json")
	}
	req.Header.Set("authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "gateway.transport")
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return errors.Wrap(err, "gateway.decode")
		}
	}
	return nil
}

// checkStatus turns a 422 into the field-level ValidationErrors the
// caller surfaces verbatim, and anything else non-2xx into a generic
// retryable error.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	if resp.StatusCode == http.StatusUnprocessableEntity {
		var body struct {
			Errors model.ValidationErrors `json:"errors"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && !body.Errors.Empty() {
			return body.Errors
		}
	}
	return errors.Errorf("gateway: %s", resp.Status)
}
