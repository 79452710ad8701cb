package discord

import (
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-webhooks/core"
	"github.com/tidwall/gjson"
)

// CodeInvalidFormBody is the JSON error code Discord uses for payloads
// rejected by its own validation.
const CodeInvalidFormBody = 50035

// apiError turns a non-2xx execute response into a rich error. Bodies that
// describe form errors become validation failures with one FieldError per
// reported problem.
func apiError(res core.DeliveryResponse, webhook WebhookURL) error {
	body := gjson.ParseBytes(res.Body)
	message := strings.TrimSpace(body.Get("message").String())
	if message == "" {
		message = http.StatusText(res.StatusCode)
	}

	metadata := map[string]any{
		"webhook_id": webhook.ID,
	}
	if code := body.Get("code"); code.Exists() {
		metadata["discord_code"] = code.Int()
	}
	if retryAfter := body.Get("retry_after"); retryAfter.Exists() {
		metadata["retry_after_ms"] = time.Duration(retryAfter.Float() * float64(time.Second)).Milliseconds()
	}
	if global := body.Get("global"); global.Exists() {
		metadata["global"] = global.Bool()
	}

	if res.StatusCode == http.StatusBadRequest {
		fields := formErrors(body.Get("errors"))
		if len(fields) > 0 || body.Get("code").Int() == CodeInvalidFormBody {
			return core.NewValidationError("discord: "+message, fields...).WithMetadata(metadata)
		}
	}
	return core.NewDeliveryError(nil, "discord: "+message, res.StatusCode, metadata)
}

// formErrors flattens Discord's nested {"field":{"_errors":[...]}} tree into
// dotted field paths such as embeds[0].title.
func formErrors(tree gjson.Result) []goerrors.FieldError {
	if !tree.Exists() || !tree.IsObject() {
		return nil
	}
	var out []goerrors.FieldError
	var walk func(node gjson.Result, path string)
	walk = func(node gjson.Result, path string) {
		node.ForEach(func(key, value gjson.Result) bool {
			name := key.String()
			if name == "_errors" {
				value.ForEach(func(_, item gjson.Result) bool {
					out = append(out, goerrors.FieldError{
						Field:   path,
						Message: item.Get("message").String(),
						Value:   item.Get("code").String(),
					})
					return true
				})
				return true
			}
			walk(value, joinPath(path, name))
			return true
		})
	}
	walk(tree, "")
	sort.SliceStable(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return out
}

func joinPath(path, key string) string {
	if _, err := strconv.Atoi(key); err == nil {
		return path + "[" + key + "]"
	}
	if path == "" {
		return key
	}
	return path + "." + key
}

func configError(message string) error {
	return goerrors.New(message, goerrors.CategoryInternal).
		WithCode(http.StatusInternalServerError).
		WithTextCode(core.ErrorInternal)
}
