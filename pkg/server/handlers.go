package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/harrisonrobin/taskplan/pkg/export"
	"github.com/harrisonrobin/taskplan/pkg/extract"
	"github.com/harrisonrobin/taskplan/pkg/model"
	"github.com/harrisonrobin/taskplan/pkg/orgmode"
	"github.com/harrisonrobin/taskplan/pkg/planner"
	"github.com/harrisonrobin/taskplan/pkg/taskwarrior"
	"github.com/harrisonrobin/taskplan/pkg/textract"
)

type extractRequest struct {
	Texts    []extract.Source  `json:"texts"`
	Settings planner.Overrides `json:"settings"`
}

type planRequest struct {
	Tasks    []model.Task      `json:"tasks"`
	Settings planner.Overrides `json:"settings"`
}

type exportRequest struct {
	Tasks    []model.Task      `json:"tasks"`
	Blocks   []model.Block     `json:"blocks"`
	Settings planner.Overrides `json:"settings"`
}

// handleExtract accepts JSON sources or a multipart form with a "text" field and "files".
func (s *Server) handleExtract(c *gin.Context) {
	var req extractRequest
	var err error
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		req, err = readMultipart(c)
	} else {
		err = c.ShouldBindJSON(&req)
	}
	if err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	sess, err := s.session(req.Settings)
	if err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	tasks := sess.Extract(c.Request.Context(), req.Texts)
	if len(tasks) == 0 {
		respondSuccess(c, http.StatusOK, gin.H{"tasks": []model.Task{}, "message": "no tasks found"})
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"tasks": tasks})
}

func readMultipart(c *gin.Context) (extractRequest, error) {
	var req extractRequest
	form, err := c.MultipartForm()
	if err != nil {
		return req, err
	}

	var files []textract.File
	for _, fh := range form.File["files"] {
		f, err := fh.Open()
		if err != nil {
			return req, fmt.Errorf("open %s: %w", fh.Filename, err)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return req, fmt.Errorf("read %s: %w", fh.Filename, err)
		}
		files = append(files, textract.File{Name: fh.Filename, Data: data})
	}
	req.Texts = textract.Collect(strings.Join(form.Value["text"], "\n"), files)

	if v := c.PostForm("use_llm"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return req, fmt.Errorf("use_llm: %w", err)
		}
		req.Settings.UseLLM = &b
	}
	if v := c.PostForm("timezone"); v != "" {
		req.Settings.Timezone = &v
	}
	return req, nil
}

func (s *Server) handlePlan(c *gin.Context) {
	var req planRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	sess, err := s.session(req.Settings)
	if err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	blocks, summary := sess.Plan(req.Tasks)
	if blocks == nil {
		blocks = []model.Block{}
	}
	respondSuccess(c, http.StatusOK, gin.H{"blocks": blocks, "summary": summary})
}

var errUnknownFormat = errors.New("unknown export format")

func (s *Server) handleExport(c *gin.Context) {
	format := c.Param("format")

	var req exportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	sess, err := s.session(req.Settings)
	if err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	loc := sess.Settings.Location

	var body, contentType string
	switch format {
	case "ics":
		body, contentType = export.ICS(req.Blocks, sess.Now()), "text/calendar"
	case "csv":
		body, contentType = export.CSV(req.Tasks), "text/csv"
	case "md":
		body, contentType = export.Markdown(req.Tasks, loc), "text/markdown"
	case "org":
		body, contentType = orgmode.Export(req.Tasks, req.Blocks, loc), "text/org"
	case "taskwarrior":
		var sb strings.Builder
		if err := taskwarrior.WriteJSON(&sb, taskwarrior.FromTasks(req.Tasks, req.Blocks, sess.Now())); err != nil {
			s.respondError(c, http.StatusInternalServerError, err)
			return
		}
		body, contentType = sb.String(), "application/json"
	default:
		s.respondError(c, http.StatusNotFound, fmt.Errorf("%w: %q", errUnknownFormat, format))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, exportFilename(format)))
	c.Data(http.StatusOK, contentType+"; charset=utf-8", []byte(body))
}

func exportFilename(format string) string {
	switch format {
	case "taskwarrior":
		return "tasks.json"
	case "ics":
		return "plan.ics"
	default:
		return "tasks." + format
	}
}
