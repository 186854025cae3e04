package model

// 图标注册表：图标键到前端图标类名的静态映射
// 菜单只存储键，渲染时通过 ResolveIcon 解析，未注册的键回退到默认图标
var iconRegistry = map[string]string{
	"dashboard":  "icon-dashboard",
	"user":       "icon-user",
	"role":       "icon-shield",
	"permission": "icon-key",
	"menu":       "icon-list",
	"setting":    "icon-gear",
	"folder":     "icon-folder",
	"report":     "icon-chart",
}

// DefaultIcon 未注册图标键的回退值
const DefaultIcon = "icon-circle"

// ResolveIcon 解析图标键，未注册或为空时返回默认图标
func ResolveIcon(key string) string {
	if class, ok := iconRegistry[key]; ok {
		return class
	}
	return DefaultIcon
}
