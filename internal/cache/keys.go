package cache

import "fmt"

func RateLimitKey(client string) string {
	return fmt.Sprintf("ratelimit:%s", client)
}

func LatestReportKey(workspaceID string) string {
	return fmt.Sprintf("cfo:latest:%s", workspaceID)
}
