package controller

import (
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/maxagent/rag/models"
	"github.com/maxagent/rag/services"
)

// RAGController handles the HTTP requests for the RAG API. It delegates all
// business logic to the service layer.
type RAGController struct {
	ingestion *services.IngestionService
	chat      *services.ChatService
	index     *services.VectorIndex
	sessions  *services.SessionStore
}

func NewRAGController(ingestion *services.IngestionService, chat *services.ChatService, index *services.VectorIndex, sessions *services.SessionStore) *RAGController {
	return &RAGController{
		ingestion: ingestion,
		chat:      chat,
		index:     index,
		sessions:  sessions,
	}
}

// IngestDocuments is the handler for POST /api/v1/documents. It accepts a
// multipart batch under the "files" field; per-file failures are reported in
// the response, never as a failed request.
func (c *RAGController) IngestDocuments(ctx *gin.Context) {
	form, err := ctx.MultipartForm()
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid multipart form: " + err.Error()})
		return
	}
	fileHeaders := form.File["files"]
	if len(fileHeaders) == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "No files provided under the 'files' field"})
		return
	}

	files := make([]services.UploadedFile, 0, len(fileHeaders))
	for _, header := range fileHeaders {
		f, err := header.Open()
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Could not open uploaded file " + header.Filename})
			return
		}
		content, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Could not read uploaded file " + header.Filename})
			return
		}
		files = append(files, services.UploadedFile{Name: header.Filename, Content: content})
	}

	session, _ := c.sessions.Get(ctx.PostForm("sessionID"))
	report := c.ingestion.IngestFiles(ctx.Request.Context(), session, files)
	ctx.JSON(http.StatusOK, report)
}

// ListDocuments is the handler for GET /api/v1/documents.
func (c *RAGController) ListDocuments(ctx *gin.Context) {
	session, _ := c.sessions.Get(ctx.Query("sessionID"))
	docs := session.IngestedDocuments()
	ctx.JSON(http.StatusOK, models.ListDocumentsResponse{Count: len(docs), Documents: docs})
}

// Search is the handler for POST /api/v1/search.
func (c *RAGController) Search(ctx *gin.Context) {
	var req models.SearchRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	results, err := c.index.Search(ctx.Request.Context(), req.Query, req.K)
	if err != nil {
		log.Printf("CONTROLLER ERROR: search failed: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed"})
		return
	}
	ctx.JSON(http.StatusOK, models.SearchResponse{Count: len(results), Results: results})
}

// Chat is the handler for POST /api/v1/chat. Failures downstream of the
// service layer surface as an apology answer, so this handler only rejects
// malformed requests.
func (c *RAGController) Chat(ctx *gin.Context) {
	var req models.ChatRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	session, sessionID := c.sessions.Get(req.SessionID)
	answer := c.chat.Answer(ctx.Request.Context(), session, req.Message)
	ctx.JSON(http.StatusOK, models.ChatResponse{Answer: answer, SessionID: sessionID})
}

// GetHistory is the handler for GET /api/v1/chat/history.
func (c *RAGController) GetHistory(ctx *gin.Context) {
	session, _ := c.sessions.Get(ctx.Query("sessionID"))
	messages := session.Messages()
	resp := models.ChatHistoryResponse{Messages: messages, TotalMessages: len(messages)}
	for _, m := range messages {
		switch m.Role {
		case models.RoleUser:
			resp.UserMessages++
		case models.RoleAssistant:
			resp.AssistantMessages++
		}
	}
	ctx.JSON(http.StatusOK, resp)
}

// ClearHistory is the handler for DELETE /api/v1/chat/history.
func (c *RAGController) ClearHistory(ctx *gin.Context) {
	session, _ := c.sessions.Get(ctx.Query("sessionID"))
	session.ClearMessages()
	ctx.JSON(http.StatusOK, gin.H{"message": "Chat history cleared"})
}

// Stats is the handler for GET /api/v1/stats. It always returns 200; a
// backing-store problem is reported inside the payload.
func (c *RAGController) Stats(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, c.index.Stats(ctx.Request.Context()))
}

// Reset is the handler for POST /api/v1/reset. It drops every indexed entry
// and clears the ingestion ledgers so the same files can be loaded again.
func (c *RAGController) Reset(ctx *gin.Context) {
	if err := c.index.Reset(ctx.Request.Context()); err != nil {
		log.Printf("CONTROLLER ERROR: reset failed: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset index"})
		return
	}
	c.sessions.ResetIngestion()
	ctx.JSON(http.StatusOK, gin.H{"message": "Index cleared"})
}
