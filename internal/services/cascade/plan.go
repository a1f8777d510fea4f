package cascade

import (
	"context"
	"log"
	"strings"
)

// Outcome 单个步骤的执行结果
type Outcome int

const (
	// OutcomeOK 执行成功
	OutcomeOK Outcome = iota
	// OutcomeLogged 尽力而为的步骤失败，已记录日志，继续执行
	OutcomeLogged
	// OutcomeAborted 致命失败，终止后续步骤
	OutcomeAborted
	// OutcomeSkipped 因前序步骤终止而未执行
	OutcomeSkipped
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeLogged:
		return "logged"
	case OutcomeAborted:
		return "aborted"
	case OutcomeSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Step 多资源变更中的一步
type Step struct {
	Name string
	Run  func(ctx context.Context) error
	// Compensate 后续步骤致命失败时撤销本步骤，可为空
	Compensate func(ctx context.Context) error
	// BestEffort 失败只记录日志，不终止
	BestEffort bool
}

// StepResult 步骤结果
type StepResult struct {
	Name        string
	Outcome     Outcome
	Err         error
	Compensated bool
}

// Report 执行报告，每个步骤一条结果，顺序与计划一致
type Report struct {
	Plan    string
	Results []StepResult
}

// Err 返回致命错误，没有则为 nil
func (r *Report) Err() error {
	for _, res := range r.Results {
		if res.Outcome == OutcomeAborted {
			return res.Err
		}
	}
	return nil
}

// Result 按名称查找步骤结果
func (r *Report) Result(name string) (StepResult, bool) {
	for _, res := range r.Results {
		if res.Name == name {
			return res, true
		}
	}
	return StepResult{}, false
}

// Count 统计指定结果的步骤数
func (r *Report) Count(outcome Outcome) int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == outcome {
			n++
		}
	}
	return n
}

// String 形如 "write_blob=ok commit_row=aborted"
func (r *Report) String() string {
	parts := make([]string, 0, len(r.Results))
	for _, res := range r.Results {
		parts = append(parts, res.Name+"="+res.Outcome.String())
	}
	return strings.Join(parts, " ")
}

// Plan 有序步骤序列
type Plan struct {
	Name  string
	Steps []Step
}

// Add 追加步骤
func (p *Plan) Add(step Step) *Plan {
	p.Steps = append(p.Steps, step)
	return p
}

// Execute 依次执行步骤
// 致命失败时按逆序补偿已完成的步骤，补偿失败只记录日志
func Execute(ctx context.Context, p *Plan) *Report {
	report := &Report{Plan: p.Name, Results: make([]StepResult, len(p.Steps))}
	for i, step := range p.Steps {
		report.Results[i] = StepResult{Name: step.Name, Outcome: OutcomeSkipped}
	}

	for i, step := range p.Steps {
		err := step.Run(ctx)
		if err == nil {
			report.Results[i].Outcome = OutcomeOK
			continue
		}

		report.Results[i].Err = err
		if step.BestEffort {
			report.Results[i].Outcome = OutcomeLogged
			log.Printf("[Cascade] %s: step %s failed, continuing: %v", p.Name, step.Name, err)
			continue
		}

		report.Results[i].Outcome = OutcomeAborted
		log.Printf("[Cascade] %s: step %s failed, aborting: %v", p.Name, step.Name, err)
		compensate(ctx, p, report, i)
		return report
	}

	return report
}

func compensate(ctx context.Context, p *Plan, report *Report, failed int) {
	// 请求取消后补偿仍需执行
	ctx = context.WithoutCancel(ctx)

	for i := failed - 1; i >= 0; i-- {
		step := p.Steps[i]
		if step.Compensate == nil || report.Results[i].Outcome != OutcomeOK {
			continue
		}
		if err := step.Compensate(ctx); err != nil {
			log.Printf("[Cascade] %s: compensation of %s failed, manual cleanup needed: %v", p.Name, step.Name, err)
			continue
		}
		report.Results[i].Compensated = true
	}
}
