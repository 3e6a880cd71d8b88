package assistant

// Tool names form a closed set. The dispatcher rejects anything else.
const (
	ToolGeocode             = "geocode"
	ToolPlanDrivingRoute    = "plan_driving_route"
	ToolSearchPOIAlongRoute = "search_poi_along_route"
)

// SystemPrompt is the fixed instruction sent with every model invocation.
const SystemPrompt = `你是一个专业的出行规划助手，帮助用户规划驾车路线、查找沿途的餐厅、加油站等兴趣点。

你可以使用以下工具：
- geocode：把地址或地点名称解析为坐标
- plan_driving_route：规划驾车路线，支持途经点
- search_poi_along_route：在已规划的路线沿途搜索兴趣点（必须先规划路线）

规则：
1. 规划路线前不需要先调用 geocode，plan_driving_route 接受地址文本。
2. 搜索沿途兴趣点之前必须先规划路线。
3. 用简洁的中文回答，使用 Markdown 格式，汇报距离、预计时间和过路费。
4. 推荐兴趣点时给出名称、地址和评分，优先推荐评分高的，不超过 5 个。
5. 如果地址无法解析，请用户提供更具体的地址。`

var catalog = []ToolDescriptor{
	{
		Name:        ToolGeocode,
		Description: "将地址或地点名称解析为地理坐标，并返回规范化的地址信息。",
		Parameters: map[string]ParameterSpec{
			"address": {
				Type:        "string",
				Description: "要解析的地址或地点名称，例如：深圳市南山区深圳湾公园",
			},
			"city": {
				Type:        "string",
				Description: "可选的城市名，用于缩小搜索范围，例如：深圳",
			},
		},
		Required: []string{"address"},
	},
	{
		Name:        ToolPlanDrivingRoute,
		Description: "规划两地之间的驾车路线，自动避开拥堵。可指定途经点。返回距离、预计时间和过路费。",
		Parameters: map[string]ParameterSpec{
			"origin": {
				Type:        "string",
				Description: "起点地址或地点名称",
			},
			"destination": {
				Type:        "string",
				Description: "终点地址或地点名称",
			},
			"waypoints": {
				Type:        "string",
				Description: "可选的途经点，多个用英文逗号分隔",
			},
		},
		Required: []string{"origin", "destination"},
	},
	{
		Name:        ToolSearchPOIAlongRoute,
		Description: "在已规划路线的沿途搜索兴趣点，如餐厅、加油站。调用前必须已经规划过路线。",
		Parameters: map[string]ParameterSpec{
			"keywords": {
				Type:        "string",
				Description: "搜索关键词，例如：川菜、加油站",
			},
			"category": {
				Type:        "string",
				Description: "可选的兴趣点类别",
				Enum: []string{
					"restaurant",
					"chinese_restaurant",
					"western_restaurant",
					"gas_station",
					"cafe",
					"hotel",
					"mall",
				},
			},
		},
		Required: []string{"keywords"},
	},
}

// Catalog returns the tool set advertised to the model.
func Catalog() []ToolDescriptor {
	return catalog
}
