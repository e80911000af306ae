package status

import (
	"time"

	"github.com/blues/bms/internal/model"
)

// Source 状态来源
type Source int

const (
	// SourceDerived 状态由字段推导得出
	SourceDerived Source = iota
	// SourceOverride 管理员覆盖，优先于一切推导
	SourceOverride
	// SourceCached 旧版悬赏直接沿用外部索引器写入的缓存状态
	SourceCached
)

// Resolution 状态推导结果
type Resolution struct {
	Status string
	Source Source
}

// Input 推导所需的实体快照，由 logic 层从持久化记录和关联集合汇总
type Input struct {
	Persisted bool // 是否已落库（未落库的悬赏不看意向/类型特例）

	OverrideStatus string
	Legacy         bool
	CachedStatus   string

	IsOpen      bool
	Accepted    bool
	ExpiresDate time.Time

	// 原始摄取数据中的两个截止时间（unix 秒，0 表示缺失），
	// 决定过期后能否补交
	ContractDeadline int64
	IPFSDeadline     int64

	ProjectType      string
	FulfillmentCount int

	HasNonPendingInterest bool
	// 是否存在已注资（txid 非空）且非定向给完成者的打赏
	HasFundedExternalTip bool
}

// CanSubmitAfterExpiration 过期后是否仍可提交。
// 旧版悬赏始终可以；标准悬赏要求合约截止时间严格晚于 ipfs 截止时间，
// ipfs 截止时间缺失则不可补交。
func CanSubmitAfterExpiration(in Input) bool {
	if in.Legacy {
		return true
	}
	if in.IPFSDeadline == 0 {
		return false
	}
	return in.ContractDeadline > in.IPFSDeadline
}

// PastHardExpiration 是否已过硬过期时间（过期且不可补交）
func PastHardExpiration(in Input, now time.Time) bool {
	return now.After(in.ExpiresDate) && !CanSubmitAfterExpiration(in)
}

// Resolve 按固定优先级推导悬赏状态，任何一条命中即返回。
// 推导过程不访问外部资源，相同输入与时间下结果幂等。
func Resolve(in Input, now time.Time) Resolution {
	if in.OverrideStatus != "" {
		return Resolution{Status: in.OverrideStatus, Source: SourceOverride}
	}
	if in.Legacy {
		return Resolution{Status: in.CachedStatus, Source: SourceCached}
	}

	if !in.IsOpen {
		if in.Accepted {
			return derived(model.StatusDone)
		}
		if PastHardExpiration(in, now) {
			return derived(model.StatusExpired)
		}
		if in.HasFundedExternalTip {
			return derived(model.StatusDone)
		}
		// 未过期、未验收、也没有打赏，只能是被取消
		return derived(model.StatusCancelled)
	}

	// contest/cooperative 不论有多少认领和提交都保持 open
	if in.Persisted && (in.ProjectType == model.ProjectTypeContest || in.ProjectType == model.ProjectTypeCooperative) {
		return derived(model.StatusOpen)
	}
	if in.FulfillmentCount == 0 {
		if in.Persisted && in.HasNonPendingInterest {
			return derived(model.StatusStarted)
		}
		return derived(model.StatusOpen)
	}
	return derived(model.StatusSubmitted)
}

// Unknown 推导输入无法构建时的兜底结果
func Unknown() Resolution {
	return derived(model.StatusUnknown)
}

func derived(s string) Resolution {
	return Resolution{Status: s, Source: SourceDerived}
}
