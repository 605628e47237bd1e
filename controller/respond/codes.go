package respond

// 响应代码
const (
	HttpsCodeSuccess = 0
	HttpsCodeError   = -1

	HttpsCodeParamError = 400
	HttpsCodeAuthError  = 401
)

// 响应消息
const (
	RespMessageSuccess = "success"
)
