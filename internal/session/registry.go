package session

import "sync"

// Registry 按 key 管理多条会话
//
// 私聊服务为每个会话对象维护一条连接，key 是对端用户名，
// 通知频道用固定的哨兵 key。
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry 创建空注册表
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
	}
}

// GetOrCreate 返回 key 对应的会话，不存在时用 factory 创建
func (r *Registry) GetOrCreate(key string, factory func() *Session) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[key]; ok {
		return s
	}
	s := factory()
	r.sessions[key] = s
	return s
}

// Get 返回 key 对应的会话
func (r *Registry) Get(key string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[key]
	return s, ok
}

// Remove 断开并移除 key 对应的会话
func (r *Registry) Remove(key string) {
	r.mu.Lock()
	s, ok := r.sessions[key]
	delete(r.sessions, key)
	r.mu.Unlock()
	if ok {
		s.Disconnect()
	}
}

// IsConnected 判断 key 对应的会话是否在线
func (r *Registry) IsConnected(key string) bool {
	r.mu.Lock()
	s, ok := r.sessions[key]
	r.mu.Unlock()
	return ok && s.IsConnected()
}

// DisconnectAll 断开全部会话但保留注册信息
func (r *Registry) DisconnectAll() {
	r.mu.Lock()
	all := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		all = append(all, s)
	}
	r.mu.Unlock()

	for _, s := range all {
		s.Disconnect()
	}
}

// ClearAll 断开并清空全部会话
func (r *Registry) ClearAll() {
	r.mu.Lock()
	all := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		all = append(all, s)
	}
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	for _, s := range all {
		s.Disconnect()
	}
}

// Len 返回当前注册的会话数
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
