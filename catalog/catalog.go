// Package catalog holds the node templates offered on the editor's palette.
package catalog

// Template describes an instantiable node kind.
type Template struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
}

var templates = []Template{
	{ID: "trigger", Title: "트리거", Subtitle: "워크플로우 시작", Icon: "Play", Description: "워크플로우를 시작하는 이벤트"},
	{ID: "webhook", Title: "Webhook", Subtitle: "HTTP 트리거", Icon: "Webhook", Description: "HTTP 요청으로 워크플로우 시작"},
	{ID: "schedule", Title: "스케줄", Subtitle: "시간 기반 트리거", Icon: "Clock", Description: "정해진 시간에 워크플로우 실행"},
	{ID: "http", Title: "HTTP 요청", Subtitle: "API 호출", Icon: "Globe", Description: "외부 API 호출"},
	{ID: "function", Title: "함수", Subtitle: "코드 실행", Icon: "Code", Description: "JavaScript 코드 실행"},
	{ID: "if", Title: "조건 분기", Subtitle: "IF/ELSE", Icon: "GitBranch", Description: "조건에 따라 분기"},
	{ID: "email", Title: "이메일", Subtitle: "이메일 발송", Icon: "Mail", Description: "이메일 전송"},
	{ID: "database", Title: "데이터베이스", Subtitle: "DB 작업", Icon: "Database", Description: "데이터베이스 쿼리 실행"},
	{ID: "transform", Title: "데이터 변환", Subtitle: "데이터 가공", Icon: "RefreshCw", Description: "데이터 형식 변환"},
	{ID: "filter", Title: "필터", Subtitle: "데이터 필터링", Icon: "Filter", Description: "조건에 맞는 데이터 필터링"},
	{ID: "merge", Title: "병합", Subtitle: "데이터 결합", Icon: "Merge", Description: "여러 데이터 소스 병합"},
	{ID: "split", Title: "분할", Subtitle: "데이터 나누기", Icon: "Split", Description: "데이터를 여러 경로로 분할"},
	{ID: "wait", Title: "대기", Subtitle: "일시 정지", Icon: "Pause", Description: "일정 시간 대기"},
	{ID: "error", Title: "에러 처리", Subtitle: "예외 처리", Icon: "AlertTriangle", Description: "에러 발생 시 처리"},
	{ID: "notification", Title: "알림", Subtitle: "알림 전송", Icon: "Bell", Description: "푸시 알림 또는 메시지 전송"},
}

// List returns the templates in display order. The returned slice is a copy.
func List() []Template {
	out := make([]Template, len(templates))
	copy(out, templates)
	return out
}
