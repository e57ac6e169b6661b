package summary

import (
	"context"
	"sync"

	"CVESummary/internal/cvedb"
	"CVESummary/internal/metrics"
	"CVESummary/internal/model"
	"CVESummary/internal/utils"
)

// LookupFunc 查询一条记录，CVEService.Lookup 和 CVEAPIClient.FetchCVE 都满足
type LookupFunc func(ctx context.Context, cveID string) (*model.CVERecord, error)

// Controller 跟踪最新输入的编号。新编号会取消上一个请求，过期的结果直接丢弃，
// 所以 State() 总是对应最后一次输入的编号
type Controller struct {
	lookup   LookupFunc
	onChange func(State)
	metrics  *metrics.Metrics
	logger   *utils.Logger

	mu     sync.Mutex
	state  State
	cveID  string
	seq    uint64
	cancel context.CancelFunc
	closed bool
	wg     sync.WaitGroup
}

// NewController onChange 在持有锁时按顺序调用，回调里不能再调用 Controller 的方法。
// m 可以为 nil
func NewController(lookup LookupFunc, onChange func(State), m *metrics.Metrics) *Controller {
	return &Controller{
		lookup:   lookup,
		onChange: onChange,
		metrics:  m,
		logger:   utils.NewLogger("summary"),
		state:    EmptyInput{},
	}
}

// SetIdentifier 提交新的编号。传入相同编号会重新发起请求
func (c *Controller) SetIdentifier(cveID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.seq++
	c.cveID = cveID

	if cveID == "" {
		c.publish(EmptyInput{})
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.publish(Loading{CVEID: cveID})

	c.wg.Add(1)
	go c.resolve(ctx, c.seq, cveID)
}

func (c *Controller) resolve(ctx context.Context, key uint64, cveID string) {
	defer c.wg.Done()

	record, err := c.lookup(ctx, cveID)

	c.mu.Lock()
	defer c.mu.Unlock()

	if key != c.seq || c.closed {
		c.logger.Debug("丢弃过期结果: %s", cveID)
		return
	}
	if cvedb.IsCanceled(err) {
		c.logger.Debug("请求已取消: %s", cveID)
		return
	}

	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.publish(Derive(cveID, Outcome{Record: record, Err: err}))
}

// publish 调用方必须持有锁
func (c *Controller) publish(state State) {
	c.state = state
	c.metrics.ObserveState(string(state.Kind()))
	if c.onChange != nil {
		c.onChange(state)
	}
}

// State 当前渲染状态
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Identifier 最后一次提交的编号
func (c *Controller) Identifier() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cveID
}

// Wait 等待所有已发出的请求返回
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Close 取消进行中的请求，之后的 SetIdentifier 不再生效
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.mu.Unlock()

	c.wg.Wait()
}
