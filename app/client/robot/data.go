package robot

// Request frame types understood by the robot's realtime API.
const (
	requestSpeakText    = "request.speak.text"
	requestSpeakStop    = "request.speak.stop"
	requestGestureStart = "request.gesture.start"
	requestLedSet       = "request.led.set"
	requestAttendUser   = "request.attend.user"
	requestListenStart  = "request.listen.start"
	requestListenStop   = "request.listen.stop"
)

// Event frame types reported back by the robot.
const (
	EventHearStart   = "response.hear.start"
	EventHearPartial = "response.hear.partial"
	EventHearEnd     = "response.hear.end"
	EventSpeakStart  = "response.speak.start"
	EventSpeakEnd    = "response.speak.end"
)

// Event is a lifecycle notification from the robot.
type Event struct {
	Type    string `json:"type"`
	Text    string `json:"text,omitempty"`
	Aborted bool   `json:"aborted,omitempty"`
}

type speakTextRequest struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type gestureRequest struct {
	Type      string  `json:"type"`
	Name      string  `json:"name"`
	Intensity float64 `json:"intensity"`
	Duration  float64 `json:"duration"`
}

type ledRequest struct {
	Type  string `json:"type"`
	Color string `json:"color"`
}

type simpleRequest struct {
	Type string `json:"type"`
}

// ListenOptions tune how the robot segments user speech.
type ListenOptions struct {
	Type             string  `json:"type"`
	Concat           bool    `json:"concat"`
	Partial          bool    `json:"partial"`
	StopRobotStart   bool    `json:"stop_robot_start"`
	ResumeRobotEnd   bool    `json:"resume_robot_end"`
	EndSpeechTimeout float64 `json:"end_speech_timeout"`
}

// DefaultListenOptions pause ASR while the robot speaks and allow long
// pauses inside a question.
func DefaultListenOptions() ListenOptions {
	return ListenOptions{
		Concat:           true,
		Partial:          true,
		StopRobotStart:   true,
		ResumeRobotEnd:   true,
		EndSpeechTimeout: 2.5,
	}
}
