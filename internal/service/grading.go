package service

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"talent_match_backend/internal/model"
)

// GradeOutcome 评分结果
type GradeOutcome struct {
	Score   int
	Passed  bool
	Correct int
	Total   int
}

// Grade 按题目逐一比较提交答案，score = round(correct/total*100)。
// 没有题目时得分为 0；未作答的题目按错误计。
func Grade(questions []model.TestQuestion, submission map[string]string, passingScore int) GradeOutcome {
	out := GradeOutcome{Total: len(questions)}
	for _, q := range questions {
		given, ok := submission[q.ID]
		if ok && answerMatches(given, q.CorrectAnswer) {
			out.Correct++
		}
	}
	out.Score = scorePercent(out.Correct, out.Total)
	out.Passed = out.Score >= passingScore
	return out
}

func scorePercent(correct, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}

// answerMatches 两侧去掉首尾空白后精确比较，不忽略大小写
func answerMatches(given, correct string) bool {
	return strings.TrimSpace(given) == strings.TrimSpace(correct)
}

// NormalizeAnswers 把 JSON 中的任意答案值转成字符串
func NormalizeAnswers(raw map[string]interface{}) map[string]string {
	out := make(map[string]string, len(raw))
	for id, v := range raw {
		out[id] = stringifyAnswer(v)
	}
	return out
}

func stringifyAnswer(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case json.Number:
		return val.String()
	default:
		if b, err := json.Marshal(val); err == nil {
			return string(b)
		}
		return fmt.Sprint(val)
	}
}

// buildAnswerRows 先按题目顺序，再把不属于该测试的提交按 ID 排序附在后面
func buildAnswerRows(questions []model.TestQuestion, submission map[string]string) []model.TestAnswer {
	rows := make([]model.TestAnswer, 0, len(submission))
	known := make(map[string]bool, len(questions))
	for _, q := range questions {
		known[q.ID] = true
		given, ok := submission[q.ID]
		if !ok {
			continue
		}
		rows = append(rows, model.TestAnswer{
			QuestionID:    q.ID,
			SelectedValue: given,
			IsCorrect:     answerMatches(given, q.CorrectAnswer),
			Position:      len(rows),
		})
	}

	var unknown []string
	for id := range submission {
		if !known[id] {
			unknown = append(unknown, id)
		}
	}
	sort.Strings(unknown)
	for _, id := range unknown {
		rows = append(rows, model.TestAnswer{
			QuestionID:    id,
			SelectedValue: submission[id],
			Position:      len(rows),
		})
	}
	return rows
}
