package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// --- Response types (дублируются из api/dto.go, CLI не импортирует internal/api) ---

// StepResponse — шаг рецепта из API.
type StepResponse struct {
	ID           string   `json:"id"`
	Order        int      `json:"order"`
	Name         string   `json:"name,omitempty"`
	DurationMin  int      `json:"duration_min"`
	DeviceTypeID string   `json:"device_type_id"`
	DependsOn    []string `json:"depends_on,omitempty"`
}

// RecipeResponse — рецепт из API.
type RecipeResponse struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Version     int              `json:"version"`
	Steps       []StepResponse   `json:"steps"`
	DurationMin int              `json:"duration_min"`
	Materials   []map[string]any `json:"materials,omitempty"`
	CreatedAt   string           `json:"created_at"`
	UpdatedAt   string           `json:"updated_at"`
}

// RecipeSnapshotResponse — снапшот рецепта из API.
type RecipeSnapshotResponse struct {
	ID            string         `json:"id"`
	RecipeID      string         `json:"recipe_id"`
	Version       int            `json:"version"`
	RecipeVersion int            `json:"recipe_version"`
	Name          string         `json:"name"`
	Steps         []StepResponse `json:"steps"`
	DurationMin   int            `json:"duration_min"`
	CreatedAt     string         `json:"created_at"`
}

// ValidateStepsResponse — результат валидации шагов.
type ValidateStepsResponse struct {
	DurationMin int `json:"duration_min"`
}

// ProductResponse — изделие из API.
type ProductResponse struct {
	ID           string                `json:"id"`
	DesignNumber string                `json:"design_number"`
	Name         string                `json:"name,omitempty"`
	Recipes      []RecipeEntryResponse `json:"recipes"`
	CreatedAt    string                `json:"created_at"`
	UpdatedAt    string                `json:"updated_at"`
}

// RecipeEntryResponse — вхождение рецепта в изделие.
type RecipeEntryResponse struct {
	RecipeID string `json:"recipe_id"`
	Quantity int    `json:"quantity"`
}

// ProductSnapshotResponse — снапшот изделия из API.
type ProductSnapshotResponse struct {
	ID           string `json:"id"`
	ProductID    string `json:"product_id"`
	Version      int    `json:"version"`
	DesignNumber string `json:"design_number"`
	Name         string `json:"name,omitempty"`
	Recipes      []struct {
		RecipeSnapshotID string `json:"recipe_snapshot_id"`
		RecipeID         string `json:"recipe_id"`
		Quantity         int    `json:"quantity"`
	} `json:"recipes"`
	CreatedAt string `json:"created_at"`
}

// LineResponse — позиция заказа из API.
type LineResponse struct {
	ProductID        string `json:"product_id,omitempty"`
	RecipeID         string `json:"recipe_id,omitempty"`
	TargetQuantity   int    `json:"target_quantity"`
	ProducedQuantity int    `json:"produced_quantity"`
}

// ProjectResponse — заказ из API.
type ProjectResponse struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Status       string         `json:"status"`
	ProductLines []LineResponse `json:"product_lines,omitempty"`
	RecipeLines  []LineResponse `json:"recipe_lines,omitempty"`
	ActivatedAt  string         `json:"activated_at,omitempty"`
	CreatedAt    string         `json:"created_at"`
	UpdatedAt    string         `json:"updated_at"`
}

// ActivationResponse — результат активации заказа.
type ActivationResponse struct {
	Project      ProjectResponse `json:"project"`
	TasksCreated int             `json:"tasks_created"`
}

// TaskResponse — task из API.
type TaskResponse struct {
	ID               string `json:"id"`
	ProjectID        string `json:"project_id"`
	RecipeSnapshotID string `json:"recipe_snapshot_id"`
	StepID           string `json:"step_id"`
	StepName         string `json:"step_name,omitempty"`
	StepOrder        int    `json:"step_order"`
	IsLastStep       bool   `json:"is_last_step"`
	DeviceTypeID     string `json:"device_type_id"`
	ExecutionNumber  int    `json:"execution_number"`
	TotalExecutions  int    `json:"total_executions"`
	Status           string `json:"status"`
	CreatedAt        string `json:"created_at"`
}

// --- Request types ---

// CreateRecipeRequest — создание рецепта. Шаги и материалы
// передаются как сырой JSON (обычно из файла).
type CreateRecipeRequest struct {
	Name      string          `json:"name"`
	Steps     json.RawMessage `json:"steps,omitempty"`
	Materials json.RawMessage `json:"materials,omitempty"`
}

// UpdateRecipeRequest — обновление рецепта.
type UpdateRecipeRequest struct {
	Name      *string         `json:"name,omitempty"`
	Steps     json.RawMessage `json:"steps,omitempty"`
	Materials json.RawMessage `json:"materials,omitempty"`
}

// CreateProductRequest — создание изделия.
type CreateProductRequest struct {
	DesignNumber string             `json:"design_number"`
	Name         string             `json:"name,omitempty"`
	Recipes      []RecipeEntryInput `json:"recipes"`
}

// UpdateProductRequest — обновление изделия.
type UpdateProductRequest struct {
	DesignNumber *string             `json:"design_number,omitempty"`
	Name         *string             `json:"name,omitempty"`
	Recipes      *[]RecipeEntryInput `json:"recipes,omitempty"`
}

// RecipeEntryInput — вхождение рецепта в изделие.
type RecipeEntryInput struct {
	RecipeID string `json:"recipe_id"`
	Quantity int    `json:"quantity"`
}

// LineInput — позиция заказа.
type LineInput struct {
	ProductID      string `json:"product_id,omitempty"`
	RecipeID       string `json:"recipe_id,omitempty"`
	TargetQuantity int    `json:"target_quantity"`
}

// CreateProjectRequest — создание заказа.
type CreateProjectRequest struct {
	Name         string      `json:"name"`
	ProductLines []LineInput `json:"product_lines,omitempty"`
	RecipeLines  []LineInput `json:"recipe_lines,omitempty"`
}

// --- API response wrappers ---

type dataResponse struct {
	Data json.RawMessage `json:"data"`
}

type listResponse struct {
	Data  json.RawMessage `json:"data"`
	Total int             `json:"total"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// --- Client ---

// Client — HTTP-клиент для Fabrica API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт клиент для API.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// --- Recipes ---

// ListRecipes возвращает все рецепты.
func (c *Client) ListRecipes() ([]RecipeResponse, error) {
	var recipes []RecipeResponse
	err := c.list("/api/v1/recipes", nil, &recipes)
	return recipes, err
}

// CreateRecipe создаёт новый рецепт.
func (c *Client) CreateRecipe(req CreateRecipeRequest) (*RecipeResponse, error) {
	var recipe RecipeResponse
	err := c.post("/api/v1/recipes", req, &recipe)
	return &recipe, err
}

// GetRecipe возвращает рецепт по ID.
func (c *Client) GetRecipe(id string) (*RecipeResponse, error) {
	var recipe RecipeResponse
	err := c.get("/api/v1/recipes/"+id, &recipe)
	return &recipe, err
}

// UpdateRecipe обновляет рецепт.
func (c *Client) UpdateRecipe(id string, req UpdateRecipeRequest) (*RecipeResponse, error) {
	var recipe RecipeResponse
	err := c.put("/api/v1/recipes/"+id, req, &recipe)
	return &recipe, err
}

// DeleteRecipe удаляет рецепт.
func (c *Client) DeleteRecipe(id string) error {
	return c.delete("/api/v1/recipes/" + id)
}

// ValidateSteps валидирует граф шагов без сохранения.
func (c *Client) ValidateSteps(steps json.RawMessage) (*ValidateStepsResponse, error) {
	body := map[string]json.RawMessage{"steps": steps}
	var result ValidateStepsResponse
	err := c.post("/api/v1/recipes/validate", body, &result)
	return &result, err
}

// ListRecipeSnapshots возвращает снапшоты рецепта.
func (c *Client) ListRecipeSnapshots(recipeID string) ([]RecipeSnapshotResponse, error) {
	var snaps []RecipeSnapshotResponse
	err := c.list("/api/v1/recipes/"+recipeID+"/snapshots", nil, &snaps)
	return snaps, err
}

// SnapshotRecipe возвращает актуальный снапшот рецепта,
// создавая новую версию при необходимости.
func (c *Client) SnapshotRecipe(recipeID string) (*RecipeSnapshotResponse, error) {
	var snap RecipeSnapshotResponse
	err := c.post("/api/v1/recipes/"+recipeID+"/snapshots", nil, &snap)
	return &snap, err
}

// --- Products ---

// ListProducts возвращает все изделия.
func (c *Client) ListProducts() ([]ProductResponse, error) {
	var products []ProductResponse
	err := c.list("/api/v1/products", nil, &products)
	return products, err
}

// CreateProduct создаёт новое изделие.
func (c *Client) CreateProduct(req CreateProductRequest) (*ProductResponse, error) {
	var product ProductResponse
	err := c.post("/api/v1/products", req, &product)
	return &product, err
}

// GetProduct возвращает изделие по ID.
func (c *Client) GetProduct(id string) (*ProductResponse, error) {
	var product ProductResponse
	err := c.get("/api/v1/products/"+id, &product)
	return &product, err
}

// UpdateProduct обновляет изделие.
func (c *Client) UpdateProduct(id string, req UpdateProductRequest) (*ProductResponse, error) {
	var product ProductResponse
	err := c.put("/api/v1/products/"+id, req, &product)
	return &product, err
}

// DeleteProduct удаляет изделие.
func (c *Client) DeleteProduct(id string) error {
	return c.delete("/api/v1/products/" + id)
}

// ListProductSnapshots возвращает снапшоты изделия.
func (c *Client) ListProductSnapshots(productID string) ([]ProductSnapshotResponse, error) {
	var snaps []ProductSnapshotResponse
	err := c.list("/api/v1/products/"+productID+"/snapshots", nil, &snaps)
	return snaps, err
}

// SnapshotProduct возвращает актуальный снапшот изделия,
// создавая новую версию при необходимости.
func (c *Client) SnapshotProduct(productID string) (*ProductSnapshotResponse, error) {
	var snap ProductSnapshotResponse
	err := c.post("/api/v1/products/"+productID+"/snapshots", nil, &snap)
	return &snap, err
}

// --- Projects ---

// ListProjects возвращает все заказы.
func (c *Client) ListProjects() ([]ProjectResponse, error) {
	var projects []ProjectResponse
	err := c.list("/api/v1/projects", nil, &projects)
	return projects, err
}

// CreateProject создаёт новый заказ.
func (c *Client) CreateProject(req CreateProjectRequest) (*ProjectResponse, error) {
	var project ProjectResponse
	err := c.post("/api/v1/projects", req, &project)
	return &project, err
}

// GetProject возвращает заказ по ID.
func (c *Client) GetProject(id string) (*ProjectResponse, error) {
	var project ProjectResponse
	err := c.get("/api/v1/projects/"+id, &project)
	return &project, err
}

// DeleteProject удаляет заказ.
func (c *Client) DeleteProject(id string) error {
	return c.delete("/api/v1/projects/" + id)
}

// ActivateProject активирует заказ.
func (c *Client) ActivateProject(id string) (*ActivationResponse, error) {
	var result ActivationResponse
	err := c.post("/api/v1/projects/"+id+"/activate", nil, &result)
	return &result, err
}

// CancelProject отменяет заказ.
func (c *Client) CancelProject(id string) (*ProjectResponse, error) {
	var project ProjectResponse
	err := c.post("/api/v1/projects/"+id+"/cancel", nil, &project)
	return &project, err
}

// ListProjectTasks возвращает tasks заказа.
func (c *Client) ListProjectTasks(projectID string) ([]TaskResponse, error) {
	var tasks []TaskResponse
	err := c.list("/api/v1/projects/"+projectID+"/tasks", nil, &tasks)
	return tasks, err
}

// --- HTTP helpers ---

func (c *Client) get(path string, result any) error {
	return c.doData(http.MethodGet, path, nil, result)
}

func (c *Client) post(path string, body any, result any) error {
	return c.doData(http.MethodPost, path, body, result)
}

func (c *Client) put(path string, body any, result any) error {
	return c.doData(http.MethodPut, path, body, result)
}

func (c *Client) delete(path string) error {
	resp, err := c.do(http.MethodDelete, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return c.checkError(resp)
}

func (c *Client) list(path string, params url.Values, result any) error {
	if len(params) > 0 {
		path = path + "?" + params.Encode()
	}

	resp, err := c.do(http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	var lr listResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return json.Unmarshal(lr.Data, result)
}

func (c *Client) doData(method, path string, body any, result any) error {
	resp, err := c.do(method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	// 204 No Content
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	var dr dataResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if result != nil {
		return json.Unmarshal(dr.Data, result)
	}
	return nil
}

func (c *Client) do(method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.httpClient.Do(req)
}

func (c *Client) checkError(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}

	var er errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return fmt.Errorf("API error: HTTP %d", resp.StatusCode)
	}

	return fmt.Errorf("%s: %s", er.Error.Code, er.Error.Message)
}
