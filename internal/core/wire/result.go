package wire

import "fmt"

// ResultKind classifies one result reported by a session.
type ResultKind int

// Result kinds. Every native tag is converted to one of these exactly once,
// by ResultKindOf.
const (
	ResultUnknown ResultKind = iota
	ResultRows
	ResultStatus
	ResultCompute
	ResultCursor
	ResultParam
	ResultMessage
	ResultRowFormat
	ResultComputeFormat
	ResultDescribe
	ResultCmdFail
	ResultCmdSucceed
	ResultCmdDone
)

// Native result type codes.
const (
	csRowResult        = 4040
	csCursorResult     = 4041
	csParamResult      = 4042
	csStatusResult     = 4043
	csMsgResult        = 4044
	csComputeResult    = 4045
	csCmdDone          = 4046
	csCmdSucceed       = 4047
	csCmdFail          = 4048
	csRowFmtResult     = 4049
	csComputeFmtResult = 4050
	csDescribeResult   = 4051
)

// ResultKindOf converts a native result type code.
func ResultKindOf(code int32) ResultKind {
	switch code {
	case csRowResult:
		return ResultRows
	case csCursorResult:
		return ResultCursor
	case csParamResult:
		return ResultParam
	case csStatusResult:
		return ResultStatus
	case csMsgResult:
		return ResultMessage
	case csComputeResult:
		return ResultCompute
	case csCmdDone:
		return ResultCmdDone
	case csCmdSucceed:
		return ResultCmdSucceed
	case csCmdFail:
		return ResultCmdFail
	case csRowFmtResult:
		return ResultRowFormat
	case csComputeFmtResult:
		return ResultComputeFormat
	case csDescribeResult:
		return ResultDescribe
	}
	return ResultUnknown
}

// Code returns the native result type code, or 0 for ResultUnknown.
func (k ResultKind) Code() int32 {
	switch k {
	case ResultRows:
		return csRowResult
	case ResultCursor:
		return csCursorResult
	case ResultParam:
		return csParamResult
	case ResultStatus:
		return csStatusResult
	case ResultMessage:
		return csMsgResult
	case ResultCompute:
		return csComputeResult
	case ResultCmdDone:
		return csCmdDone
	case ResultCmdSucceed:
		return csCmdSucceed
	case ResultCmdFail:
		return csCmdFail
	case ResultRowFormat:
		return csRowFmtResult
	case ResultComputeFormat:
		return csComputeFmtResult
	case ResultDescribe:
		return csDescribeResult
	}
	return 0
}

// String returns the native result name.
func (k ResultKind) String() string {
	switch k {
	case ResultRows:
		return "CS_ROW_RESULT"
	case ResultCursor:
		return "CS_CURSOR_RESULT"
	case ResultParam:
		return "CS_PARAM_RESULT"
	case ResultStatus:
		return "CS_STATUS_RESULT"
	case ResultMessage:
		return "CS_MSG_RESULT"
	case ResultCompute:
		return "CS_COMPUTE_RESULT"
	case ResultCmdDone:
		return "CS_CMD_DONE"
	case ResultCmdSucceed:
		return "CS_CMD_SUCCEED"
	case ResultCmdFail:
		return "CS_CMD_FAIL"
	case ResultRowFormat:
		return "CS_ROWFMT_RESULT"
	case ResultComputeFormat:
		return "CS_COMPUTEFMT_RESULT"
	case ResultDescribe:
		return "CS_DESCRIBE_RESULT"
	}
	return fmt.Sprintf("CS_UNKNOWN_RESULT(%d)", int(k))
}

// CancelKind selects what Cancel discards.
type CancelKind int

// Cancel kinds.
const (
	// CancelCurrent discards the current result only.
	CancelCurrent CancelKind = iota
	// CancelAll discards the remainder of the command.
	CancelAll
)

// NoCount is the affected row count reported when the server sent none.
const NoCount int64 = -1
