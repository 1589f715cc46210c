package health

import (
	"context"
	"sort"
	"sync"
	"time"
)

type Status string

const (
	StatusHealthy   Status = "Healthy"
	StatusDegraded  Status = "Degraded"
	StatusUnhealthy Status = "Unhealthy"
)

// 数值越大越差，汇总时取最差值
func (s Status) rank() int {
	switch s {
	case StatusHealthy:
		return 0
	case StatusDegraded:
		return 1
	default:
		return 2
	}
}

type Result struct {
	Status      Status
	Description string
	Data        map[string]any
	Err         error
}

func Healthy(description string, data map[string]any) Result {
	return Result{Status: StatusHealthy, Description: description, Data: data}
}

func Unhealthy(description string, err error, data map[string]any) Result {
	return Result{Status: StatusUnhealthy, Description: description, Err: err, Data: data}
}

type CheckFunc func(ctx context.Context) Result

type Check struct {
	Name string
	Tags []string
	Fn   CheckFunc
}

func (c Check) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

type Entry struct {
	Result
	Duration time.Duration
	Tags     []string
}

type Report struct {
	Status   Status
	Duration time.Duration
	Entries  map[string]Entry
}

// Registry 保存已注册的检查项。注册只在启动阶段进行，运行期间只读
type Registry struct {
	checks  []Check
	timeout time.Duration // 单项检查超时
}

func NewRegistry(timeout time.Duration) *Registry {
	return &Registry{timeout: timeout}
}

func (r *Registry) Register(name string, fn CheckFunc, tags ...string) {
	r.checks = append(r.checks, Check{Name: name, Tags: tags, Fn: fn})
}

func (r *Registry) Len() int {
	return len(r.checks)
}

// Tags 返回去重并排序后的全部标签
func (r *Registry) Tags() []string {
	set := map[string]struct{}{}
	for _, c := range r.checks {
		for _, t := range c.Tags {
			set[t] = struct{}{}
		}
	}
	tags := make([]string, 0, len(set))
	for t := range set {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}

// Run 并发执行满足 filter 的检查项， filter 为 nil 时执行全部
func (r *Registry) Run(ctx context.Context, filter func(Check) bool) Report {
	start := time.Now()

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		entries = map[string]Entry{}
	)

	for _, check := range r.checks {
		if filter != nil && !filter(check) {
			continue
		}
		wg.Add(1)
		go func(check Check) {
			defer wg.Done()
			entry := r.runOne(ctx, check)
			mu.Lock()
			entries[check.Name] = entry
			mu.Unlock()
		}(check)
	}
	wg.Wait()

	status := StatusHealthy
	for _, e := range entries {
		if e.Status.rank() > status.rank() {
			status = e.Status
		}
	}

	return Report{
		Status:   status,
		Duration: time.Since(start),
		Entries:  entries,
	}
}

func (r *Registry) runOne(ctx context.Context, check Check) (entry Entry) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	defer func() {
		// 检查项 panic 视为不健康
		if p := recover(); p != nil {
			entry.Result = Unhealthy("check panicked", panicError{p}, nil)
		}
		entry.Duration = time.Since(start)
		entry.Tags = check.Tags
	}()

	entry.Result = check.Fn(ctx)
	if entry.Status == "" {
		entry.Status = StatusUnhealthy
	}
	return entry
}
