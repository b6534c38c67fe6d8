package history

// Stack 后进先出
type Stack struct {
	items []Entry
}

func (s *Stack) Push(e Entry) {
	s.items = append(s.items, e)
}

// Pop 栈为空时返回 false
func (s *Stack) Pop() (Entry, bool) {
	if len(s.items) == 0 {
		return nil, false
	}
	last := len(s.items) - 1
	e := s.items[last]
	s.items[last] = nil
	s.items = s.items[:last]
	return e, true
}

func (s *Stack) Len() int { return len(s.items) }

func (s *Stack) Clear() {
	clear(s.items)
	s.items = s.items[:0]
}

// Log 线性的撤销/重做历史，只保存在内存中
type Log struct {
	undo Stack
	redo Stack
}

func NewLog() *Log {
	return &Log{}
}

// Record 记录一次用户操作：压入撤销栈并清空重做栈
func (l *Log) Record(e Entry) {
	l.undo.Push(e)
	l.redo.Clear()
}

func (l *Log) PopUndo() (Entry, bool) { return l.undo.Pop() }

func (l *Log) PopRedo() (Entry, bool) { return l.redo.Pop() }

// PushUndo 重做之后把反向操作放回撤销栈，不影响重做栈
func (l *Log) PushUndo(e Entry) { l.undo.Push(e) }

func (l *Log) PushRedo(e Entry) { l.redo.Push(e) }

func (l *Log) CanUndo() bool { return l.undo.Len() > 0 }

func (l *Log) CanRedo() bool { return l.redo.Len() > 0 }

// Len 返回撤销栈和重做栈的深度
func (l *Log) Len() (undo, redo int) {
	return l.undo.Len(), l.redo.Len()
}
