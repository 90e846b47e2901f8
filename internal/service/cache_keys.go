package service

import (
	"strconv"
	"strings"
)

// Cache key taxonomy. Every variable component is escaped so that ':' inside an id or
// slug cannot make two different parameter sets produce the same key.
// 缓存键规则。所有可变部分都会转义，id 或 slug 中的 ':' 不会造成键冲突。
const (
	keyNote       = "note:"
	keyNoteSlug   = "note:slug:"
	keyNotesList  = "notes:list:"
	keySharedNote = "shared:note:"
)

var keyEscaper = strings.NewReplacer("%", "%25", ":", "%3A")

func escapeKeyPart(s string) string {
	return keyEscaper.Replace(s)
}

// NoteKey note:{owner}:{id}
func NoteKey(ownerID, noteID string) string {
	return keyNote + escapeKeyPart(ownerID) + ":" + escapeKeyPart(noteID)
}

// NoteSlugKey note:slug:{owner}:{slug}
func NoteSlugKey(ownerID, slug string) string {
	return keyNoteSlug + escapeKeyPart(ownerID) + ":" + escapeKeyPart(slug)
}

// NotesListPrefix notes:list:{owner}: , used for pattern invalidation
// NotesListPrefix 用于按前缀失效该用户全部列表缓存
func NotesListPrefix(ownerID string) string {
	return keyNotesList + escapeKeyPart(ownerID) + ":"
}

// NotesListKey notes:list:{owner}:{page}:{limit}:{search}
// page, limit and search must already be normalized
// page、limit、search 需事先归一化
func NotesListKey(ownerID string, page, limit int, search string) string {
	return NotesListPrefix(ownerID) + strconv.Itoa(page) + ":" + strconv.Itoa(limit) + ":" + escapeKeyPart(search)
}

// SharedNoteKey shared:note:{id}
func SharedNoteKey(noteID string) string {
	return keySharedNote + escapeKeyPart(noteID)
}
