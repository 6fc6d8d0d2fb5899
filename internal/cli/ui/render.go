package ui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"automl-orchestrator/internal/core/domain"
)

// FormatScore renders an optional metric value.
func FormatScore(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', 4, 64)
}

// KeyValues renders aligned "key  value" lines, skipping empty values.
func KeyValues(pairs ...[2]string) string {
	width := 0
	for _, p := range pairs {
		if p[1] != "" && len(p[0]) > width {
			width = len(p[0])
		}
	}

	var b strings.Builder
	for _, p := range pairs {
		if p[1] == "" {
			continue
		}
		b.WriteString(Styles.Key.Render(fmt.Sprintf("%-*s", width, p[0])))
		b.WriteString("  ")
		b.WriteString(Styles.Value.Render(p[1]))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// Table renders rows under a bold header. Widths are measured before
// styling so escape codes do not skew the columns.
func Table(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i := range headers {
			if i < len(row) && len(row[i]) > widths[i] {
				widths[i] = len(row[i])
			}
		}
	}

	line := func(cells []string) string {
		parts := make([]string, len(headers))
		for i := range headers {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			parts[i] = fmt.Sprintf("%-*s", widths[i], cell)
		}
		return strings.TrimRight(strings.Join(parts, "  "), " ")
	}

	var b strings.Builder
	b.WriteString(Styles.Header.Render(line(headers)))
	for _, row := range rows {
		b.WriteString("\n")
		b.WriteString(line(row))
	}
	return b.String()
}

func RenderCompute(c *domain.ComputeTarget) string {
	return KeyValues(
		[2]string{"Name", c.Name},
		[2]string{"VM size", c.VMSize},
		[2]string{"Nodes", fmt.Sprintf("%d..%d (current %d)", c.MinNodes, c.MaxNodes, c.CurrentNodeCount)},
		[2]string{"State", string(c.ProvisioningState)},
	)
}

func RenderDatasets(set *domain.DatasetSet) string {
	var rows [][]string
	for _, d := range []*domain.Dataset{set.Training, set.Validation, set.Test} {
		if d == nil {
			continue
		}
		rows = append(rows, []string{string(d.Role), d.Name, strconv.Itoa(d.Version), d.ID})
	}
	return Table([]string{"ROLE", "NAME", "VERSION", "ID"}, rows)
}

// RenderRun summarises a run and its primary metric.
func RenderRun(run *domain.Run, metric string) string {
	score := "-"
	if v, ok := run.PrimaryScore(metric); ok {
		score = FormatScore(&v)
	}
	duration := ""
	if d := run.Duration(); d > 0 {
		duration = d.Round(time.Second).String()
	}
	return KeyValues(
		[2]string{"Run", run.ID},
		[2]string{"Parent", run.ParentID},
		[2]string{"Status", string(run.Status)},
		[2]string{"Algorithm", run.Algorithm},
		[2]string{metric, score},
		[2]string{"Duration", duration},
		[2]string{"Error", run.Error},
	)
}

func RenderFeaturization(s *domain.FeaturizationSummary) string {
	rows := make([][]string, 0, len(s.Entries))
	for _, e := range s.Entries {
		rows = append(rows, []string{
			e.RawFeatureName,
			e.TypeDetected,
			e.Dropped,
			strconv.Itoa(e.EngineeredFeatureCount),
			strings.Join(e.Transformations, ","),
		})
	}
	table := Table([]string{"FEATURE", "TYPE", "DROPPED", "ENGINEERED", "TRANSFORMATIONS"}, rows)
	return table + "\n" + Styles.Muted.Render(fmt.Sprintf("%d raw features, %d engineered", len(s.Entries), s.EngineeredFeatureCount()))
}

// RenderImportance lists the top n features, highest first.
func RenderImportance(f *domain.FeatureImportance, n int) string {
	top := f.Top(n)
	if len(top) == 0 {
		return Styles.Muted.Render("no feature importance values")
	}
	rows := make([][]string, 0, len(top))
	for i, s := range top {
		rows = append(rows, []string{strconv.Itoa(i + 1), s.Name, strconv.FormatFloat(s.Value, 'f', 6, 64)})
	}
	return Table([]string{"#", "FEATURE", "IMPORTANCE"}, rows)
}

// RenderEvaluation shows accuracy and the confusion matrix, actual
// classes down the side.
func RenderEvaluation(ev *domain.Evaluation) string {
	headers := append([]string{"ACTUAL \\ PREDICTED"}, ev.Classes...)
	rows := make([][]string, 0, len(ev.Classes))
	for i, c := range ev.Classes {
		row := []string{c}
		for _, n := range ev.Matrix[i] {
			row = append(row, strconv.Itoa(n))
		}
		rows = append(rows, row)
	}
	acc := ev.Accuracy
	summary := KeyValues(
		[2]string{"Scored", strconv.Itoa(ev.Total)},
		[2]string{"Correct", strconv.Itoa(ev.Correct)},
		[2]string{"Accuracy", FormatScore(&acc)},
	)
	return summary + "\n\n" + Table(headers, rows)
}

// RenderPredictions pairs predictions with labels, at most n rows.
func RenderPredictions(predictions []any, labels []string, n int) string {
	rows := make([][]string, 0, n)
	for i, p := range predictions {
		if i >= n {
			break
		}
		actual := ""
		if i < len(labels) {
			actual = labels[i]
		}
		rows = append(rows, []string{strconv.Itoa(i), domain.PredictionString(p), actual})
	}
	return Table([]string{"ROW", "PREDICTED", "ACTUAL"}, rows)
}

func RenderPipelines(pipelines []*domain.Pipeline) string {
	if len(pipelines) == 0 {
		return Styles.Muted.Render("No pipelines recorded")
	}
	rows := make([][]string, 0, len(pipelines))
	for _, p := range pipelines {
		rows = append(rows, []string{
			p.ID.String(),
			p.CreatedAt.Format("2006-01-02 15:04"),
			p.Experiment,
			string(p.Status),
			p.Stage,
			FormatScore(p.BestScore),
			FormatScore(p.Accuracy),
			p.ServiceName,
		})
	}
	return Table([]string{"ID", "CREATED", "EXPERIMENT", "STATUS", "STAGE", "BEST", "ACCURACY", "SERVICE"}, rows)
}

func RenderPipeline(p *domain.Pipeline) string {
	model := ""
	if p.ModelName != "" {
		model = fmt.Sprintf("%s:%d", p.ModelName, p.ModelVersion)
	}
	return KeyValues(
		[2]string{"Pipeline", p.ID.String()},
		[2]string{"Status", string(p.Status)},
		[2]string{"Stage", p.Stage},
		[2]string{"Workspace", p.Workspace},
		[2]string{"Experiment", p.Experiment},
		[2]string{"Compute", p.ComputeTarget},
		[2]string{"Run", p.RunID},
		[2]string{"Best run", p.BestRunID},
		[2]string{"Algorithm", p.BestAlgorithm},
		[2]string{p.PrimaryMetric, FormatScore(p.BestScore)},
		[2]string{"Model", model},
		[2]string{"Service", p.ServiceName},
		[2]string{"Scoring URI", p.ScoringURI},
		[2]string{"Accuracy", FormatScore(p.Accuracy)},
		[2]string{"Error", p.LastError},
	)
}
