// Package github provides an HTTP client for the GitHub git refs API.
//
// # Overview
//
// The ATT&CK data repository publishes each release as a git tag such as
// "ATT&CK-v8.0". This client lists those tags through
// GET /repos/{owner}/{repo}/git/refs/tags, which answers with a JSON array
// of {"ref": "refs/tags/<name>"} objects.
//
// # Usage
//
//	client := github.NewClient(github.Options{Token: os.Getenv("GITHUB_TOKEN")})
//	tags, err := client.ListTags(ctx, "mitre", "cti", false)
//	if err != nil {
//	    return err
//	}
//
// # Authentication
//
// A GitHub personal access token is optional. Without a token, the client is
// limited to 60 requests/hour, which is plenty for a once-per-startup
// version check.
package github
