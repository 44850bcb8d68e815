package octoprint

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
)

// ExecutableTest is the host's answer to a path test.
type ExecutableTest struct {
	Result bool `json:"result"`
	Exists bool `json:"exists"`
	TypeOK bool `json:"typeok"`
	Access bool `json:"access"`
}

type pathTestCommand struct {
	Command     string `json:"command"`
	Path        string `json:"path"`
	CheckType   string `json:"check_type"`
	CheckAccess string `json:"check_access"`
}

// TestExecutable asks the host whether path is an existing executable file.
func (c *Client) TestExecutable(ctx context.Context, path string) (ExecutableTest, error) {
	body, err := json.Marshal(pathTestCommand{
		Command:     "path",
		Path:        path,
		CheckType:   "file",
		CheckAccess: "x",
	})
	if err != nil {
		return ExecutableTest{}, err
	}
	req, err := c.newRequest(ctx, http.MethodPost, utilTestPath, bytes.NewReader(body))
	if err != nil {
		return ExecutableTest{}, err
	}
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")

	var result ExecutableTest
	if err := c.do(req, &result); err != nil {
		return ExecutableTest{}, err
	}
	return result, nil
}
