package api_router

import (
	"github.com/haierkeys/ecrit-note-service/internal/app"
	"github.com/haierkeys/ecrit-note-service/internal/dto"
	pkgapp "github.com/haierkeys/ecrit-note-service/pkg/app"
	"github.com/haierkeys/ecrit-note-service/pkg/code"
	apperrors "github.com/haierkeys/ecrit-note-service/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NoteHandler 笔记 API 路由处理器
// 使用 App Container 注入依赖，支持统一错误处理
type NoteHandler struct {
	*Handler
}

// NewNoteHandler 创建 NoteHandler 实例
func NewNoteHandler(a *app.App) *NoteHandler {
	return &NoteHandler{
		Handler: NewHandler(a),
	}
}

// bindID 绑定路径中的笔记 ID，失败时已写出响应
func (h *NoteHandler) bindID(c *gin.Context, op string) (string, bool) {
	params := &dto.NoteIDRequest{}
	valid, errs := pkgapp.BindUriAndValid(c, params)
	if !valid {
		h.App.Logger().Warn(op+".BindUriAndValid err", zap.Error(errs))
		pkgapp.NewResponse(c).ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return "", false
	}
	return params.ID, true
}

// Create 创建笔记
// @Summary 创建笔记
// @Tags 笔记
// @Security UserAuthToken
// @Accept json
// @Produce json
// @Param params body dto.NoteCreateRequest true "创建参数"
// @Success 201 {object} pkgapp.Res{data=dto.NoteDTO} "成功"
// @Router /api/notes [post]
func (h *NoteHandler) Create(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.NoteCreateRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Warn("NoteHandler.Create.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()
	note, err := h.App.NoteService.Create(ctx, pkgapp.GetUID(c), params)
	if err != nil {
		h.logError(ctx, "NoteHandler.Create", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Created.WithData(note))
}

// Get 获取单条笔记
// @Summary 获取笔记详情
// @Tags 笔记
// @Security UserAuthToken
// @Produce json
// @Param id path string true "笔记 ID"
// @Success 200 {object} pkgapp.Res{data=dto.NoteDTO} "成功"
// @Router /api/notes/{id} [get]
func (h *NoteHandler) Get(c *gin.Context) {
	id, ok := h.bindID(c, "NoteHandler.Get")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	note, err := h.App.NoteService.Get(ctx, pkgapp.GetUID(c), id)
	if err != nil {
		h.logError(ctx, "NoteHandler.Get", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(note))
}

// GetBySlug 按 slug 获取笔记
// @Summary 按 slug 获取笔记
// @Tags 笔记
// @Security UserAuthToken
// @Produce json
// @Param slug path string true "slug"
// @Success 200 {object} pkgapp.Res{data=dto.NoteDTO} "成功"
// @Router /api/notes/slug/{slug} [get]
func (h *NoteHandler) GetBySlug(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.NoteSlugRequest{}

	valid, errs := pkgapp.BindUriAndValid(c, params)
	if !valid {
		h.App.Logger().Warn("NoteHandler.GetBySlug.BindUriAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()
	note, err := h.App.NoteService.GetBySlug(ctx, pkgapp.GetUID(c), params.Slug)
	if err != nil {
		h.logError(ctx, "NoteHandler.GetBySlug", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(note))
}

// List 获取笔记列表
// @Summary 获取笔记列表
// @Description 分页获取当前用户的笔记列表，按更新时间倒序
// @Tags 笔记
// @Security UserAuthToken
// @Produce json
// @Param params query dto.NoteListRequest true "查询参数"
// @Success 200 {object} pkgapp.Res{data=pkgapp.ListRes{list=[]dto.NoteSummaryDTO}} "成功"
// @Router /api/notes [get]
func (h *NoteHandler) List(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.NoteListRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Warn("NoteHandler.List.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()
	page, err := h.App.NoteService.List(ctx, pkgapp.GetUID(c), params)
	if err != nil {
		h.logError(ctx, "NoteHandler.List", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponseList(code.Success, page.Items, pkgapp.NewPager(page.Page, page.Limit, page.Total))
}

// Update 部分更新笔记
// @Summary 更新笔记
// @Tags 笔记
// @Security UserAuthToken
// @Accept json
// @Produce json
// @Param id path string true "笔记 ID"
// @Param params body dto.NoteUpdateRequest true "更新参数"
// @Success 200 {object} pkgapp.Res{data=dto.NoteDTO} "成功"
// @Router /api/notes/{id} [patch]
func (h *NoteHandler) Update(c *gin.Context) {
	id, ok := h.bindID(c, "NoteHandler.Update")
	if !ok {
		return
	}

	response := pkgapp.NewResponse(c)
	params := &dto.NoteUpdateRequest{}
	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Warn("NoteHandler.Update.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()
	note, err := h.App.NoteService.Update(ctx, pkgapp.GetUID(c), id, params)
	if err != nil {
		h.logError(ctx, "NoteHandler.Update", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(note))
}

// Delete 删除笔记
// @Summary 删除笔记
// @Tags 笔记
// @Security UserAuthToken
// @Produce json
// @Param id path string true "笔记 ID"
// @Success 200 {object} pkgapp.Res{data=dto.NoteDTO} "成功"
// @Router /api/notes/{id} [delete]
func (h *NoteHandler) Delete(c *gin.Context) {
	id, ok := h.bindID(c, "NoteHandler.Delete")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	note, err := h.App.NoteService.Delete(ctx, pkgapp.GetUID(c), id)
	if err != nil {
		h.logError(ctx, "NoteHandler.Delete", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(note))
}
