package domain

// Decision 授权决策
type Decision int

const (
	// Deny 拒绝访问
	Deny Decision = iota
	// Allow 允许访问自己拥有的资源
	Allow
	// AllowAll 允许访问全部资源（管理员）
	AllowAll
)

// AuthorizeOwner 判定 identity 对 ownerID 所属资源的访问权限。
// 管理员对任意资源返回 AllowAll，资源拥有者返回 Allow，其余返回 Deny。
// 角色分支统一收敛到这里，handler 与查询服务只消费决策结果。
func AuthorizeOwner(identity Identity, ownerID uint) Decision {
	if identity.IsAdmin {
		return AllowAll
	}
	if identity.UserID == ownerID {
		return Allow
	}
	return Deny
}

// ViewScope 判定 identity 的列表查询范围：管理员可见全部，其余只见自己。
func ViewScope(identity Identity) Decision {
	if identity.IsAdmin {
		return AllowAll
	}
	return Allow
}
