package api

import (
	"net/url"
	"strconv"
)

// Resource paths, relative to the client's base URL.
const (
	PathLogin           = "/api/auth/login"
	PathSession         = "/api/auth/session"
	PathUsers           = "/api/admin/users"
	PathEnhance         = "/api/requirement/enhance"
	PathExportTable     = "/api/cosmic/table/export"
	PathImportProcesses = "/api/cosmic/process/import"
	PathAnalysisTask    = "/api/cosmic/analyze/task"
	PathAnalysisTasks   = "/api/cosmic/analyze/tasks"
)

// UserPath returns the path of a single user.
func UserPath(id int64) string {
	return PathUsers + "/" + url.PathEscape(strconv.FormatInt(id, 10))
}

// AnalysisTaskPath returns the path of a single analysis task.
func AnalysisTaskPath(id int64) string {
	return PathAnalysisTasks + "/" + url.PathEscape(strconv.FormatInt(id, 10))
}
