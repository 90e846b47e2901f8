package editor

// ModalKind 模态框类型
type ModalKind string

const (
	ModalNone        ModalKind = ""
	ModalCreateNote  ModalKind = "create-note"
	ModalDeleteNote  ModalKind = "delete-note"
	ModalSearchNote  ModalKind = "search-note"
	ModalShareNote   ModalKind = "share-note"
	ModalUploadImage ModalKind = "upload-image"
	ModalSettings    ModalKind = "settings"
	// ModalConfirmExit 未保存退出确认
	ModalConfirmExit ModalKind = "confirm-exit"
)

// Modal the single open modal; Payload is usually the target note id
// Modal 当前唯一打开的模态框；Payload 通常是目标笔记 ID
type Modal struct {
	Kind    ModalKind
	Payload string
}

// IsOpen 是否有模态框打开
func (m Modal) IsOpen() bool {
	return m.Kind != ModalNone
}

// ModalEventType 模态框事件类型
type ModalEventType int

const (
	ModalOpen ModalEventType = iota
	ModalClose
)

// ModalEvent 模态框事件
type ModalEvent struct {
	Type    ModalEventType
	Kind    ModalKind
	Payload string
}

// OpenModal 构造打开事件
func OpenModal(kind ModalKind, payload string) ModalEvent {
	return ModalEvent{Type: ModalOpen, Kind: kind, Payload: payload}
}

// CloseModal 构造关闭事件，kind 为空时关闭任意模态框
func CloseModal(kind ModalKind) ModalEvent {
	return ModalEvent{Type: ModalClose, Kind: kind}
}

// Reduce returns the next modal state. Opening replaces whatever is open;
// a close aimed at a different kind is ignored.
// Reduce 返回下一个模态框状态。打开会替换当前模态框；针对其他类型的关闭事件被忽略
func Reduce(state Modal, ev ModalEvent) Modal {
	switch ev.Type {
	case ModalOpen:
		if ev.Kind == ModalNone {
			return state
		}
		return Modal{Kind: ev.Kind, Payload: ev.Payload}
	case ModalClose:
		if ev.Kind != ModalNone && ev.Kind != state.Kind {
			return state
		}
		return Modal{}
	default:
		return state
	}
}
