package market

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// DoJSON performs req and decodes a JSON body into out. Transport errors,
// cancellation and non-2xx statuses become ErrSourceUnavailable; bodies that
// do not decode become ErrMalformedResponse.
func DoJSON(client *http.Client, source string, req *http.Request, out any) error {
	resp, err := client.Do(req)
	if err != nil {
		return Unavailable(source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Unavailable(source, fmt.Errorf("%s %s: %s: %s", req.Method, req.URL.Path, resp.Status, body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return Unavailable(source, ctxErr)
		}
		return Malformed(source, err)
	}
	return nil
}
