package summary

import (
	"CVESummary/internal/cvedb"
	"CVESummary/internal/model"
)

// Kind 渲染状态的种类
type Kind string

const (
	KindEmpty     Kind = "empty"
	KindLoading   Kind = "loading"
	KindError     Kind = "error"
	KindNoData    Kind = "no-data"
	KindPopulated Kind = "populated"
)

// State 五种互斥的渲染状态之一，只能由本包构造
type State interface {
	Kind() Kind
	isState()
}

// EmptyInput 未提供编号
type EmptyInput struct{}

// Loading 请求进行中
type Loading struct {
	CVEID string
}

// Failed 请求失败，Message 可以直接展示给用户
type Failed struct {
	CVEID   string
	Err     error
	Message string
	Reason  cvedb.ErrorKind
}

// NoData 请求成功但记录或元数据缺失
type NoData struct {
	CVEID string
}

// Populated 记录完整，可以渲染
type Populated struct {
	View View
}

func (EmptyInput) Kind() Kind { return KindEmpty }
func (Loading) Kind() Kind    { return KindLoading }
func (Failed) Kind() Kind     { return KindError }
func (NoData) Kind() Kind     { return KindNoData }
func (Populated) Kind() Kind  { return KindPopulated }

func (EmptyInput) isState() {}
func (Loading) isState()    {}
func (Failed) isState()     {}
func (NoData) isState()     {}
func (Populated) isState()  {}

// Outcome 一次查询的结果，Pending 为 true 时其余字段无意义
type Outcome struct {
	Pending bool
	Record  *model.CVERecord
	Err     error
}

// Derive 根据编号和查询结果选出渲染状态。取消的请求仍视为加载中，不会变成错误
func Derive(cveID string, outcome Outcome) State {
	if cveID == "" {
		return EmptyInput{}
	}
	if outcome.Pending || cvedb.IsCanceled(outcome.Err) {
		return Loading{CVEID: cveID}
	}
	if outcome.Err != nil {
		return Failed{
			CVEID:   cveID,
			Err:     outcome.Err,
			Message: outcome.Err.Error(),
			Reason:  cvedb.Kind(outcome.Err),
		}
	}
	if outcome.Record == nil || outcome.Record.CVEMetadata == nil {
		return NoData{CVEID: cveID}
	}
	return Populated{View: NewView(outcome.Record)}
}
