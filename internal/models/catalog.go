package models

type CategoryInfo struct {
	Label string `json:"label"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

type PriorityInfo struct {
	Label string `json:"label"`
	Color string `json:"color"`
	Rank  int    `json:"rank"`
}

type ChannelInfo struct {
	Label string `json:"label"`
	Icon  string `json:"icon"`
}

type DigestInfo struct {
	Label       string `json:"label"`
	Description string `json:"description"`
}

var categoryCatalog = map[Category]CategoryInfo{
	CategorySystem:      {Label: "System", Icon: "⚙️", Color: "from-gray-500 to-slate-500"},
	CategoryCommunity:   {Label: "Community", Icon: "👥", Color: "from-blue-500 to-cyan-500"},
	CategoryAchievement: {Label: "Achievements", Icon: "🏆", Color: "from-yellow-500 to-orange-500"},
	CategoryReminder:    {Label: "Reminders", Icon: "⏰", Color: "from-purple-500 to-pink-500"},
	CategoryPromotion:   {Label: "What's new", Icon: "🎁", Color: "from-green-500 to-emerald-500"},
	CategoryAlert:       {Label: "Alerts", Icon: "🚨", Color: "from-red-500 to-rose-500"},
}

var priorityCatalog = map[Priority]PriorityInfo{
	PriorityLow:    {Label: "Low", Color: "text-gray-400", Rank: 0},
	PriorityMedium: {Label: "Medium", Color: "text-blue-400", Rank: 1},
	PriorityHigh:   {Label: "High", Color: "text-orange-400", Rank: 2},
	PriorityUrgent: {Label: "Urgent", Color: "text-red-400", Rank: 3},
}

var channelCatalog = map[Channel]ChannelInfo{
	ChannelPush:     {Label: "Push", Icon: "📱"},
	ChannelEmail:    {Label: "Email", Icon: "📧"},
	ChannelSMS:      {Label: "SMS", Icon: "💬"},
	ChannelWhatsApp: {Label: "WhatsApp", Icon: "📲"},
	ChannelInApp:    {Label: "In-App", Icon: "🔔"},
}

var digestCatalog = map[EmailDigest]DigestInfo{
	DigestRealtime: {Label: "Real time", Description: "Every notification"},
	DigestDaily:    {Label: "Daily", Description: "Once a day"},
	DigestWeekly:   {Label: "Weekly", Description: "Once a week"},
	DigestNever:    {Label: "Never", Description: "In-app only"},
}

func (c Category) Info() (CategoryInfo, bool) {
	info, ok := categoryCatalog[c]
	return info, ok
}

func (p Priority) Info() (PriorityInfo, bool) {
	info, ok := priorityCatalog[p]
	return info, ok
}

func (c Channel) Info() (ChannelInfo, bool) {
	info, ok := channelCatalog[c]
	return info, ok
}

func (d EmailDigest) Info() (DigestInfo, bool) {
	info, ok := digestCatalog[d]
	return info, ok
}

type CatalogEntry[K ~string, V any] struct {
	Key  K `json:"key"`
	Info V `json:"info"`
}

// Catalog is the display metadata for every enumeration, in display order.
type Catalog struct {
	Categories   []CatalogEntry[Category, CategoryInfo]  `json:"categories"`
	Priorities   []CatalogEntry[Priority, PriorityInfo]  `json:"priorities"`
	Channels     []CatalogEntry[Channel, ChannelInfo]    `json:"channels"`
	EmailDigests []CatalogEntry[EmailDigest, DigestInfo] `json:"emailDigests"`
}

func NewCatalog() Catalog {
	var c Catalog
	for _, k := range Categories() {
		c.Categories = append(c.Categories, CatalogEntry[Category, CategoryInfo]{Key: k, Info: categoryCatalog[k]})
	}
	for _, k := range Priorities() {
		c.Priorities = append(c.Priorities, CatalogEntry[Priority, PriorityInfo]{Key: k, Info: priorityCatalog[k]})
	}
	for _, k := range Channels() {
		c.Channels = append(c.Channels, CatalogEntry[Channel, ChannelInfo]{Key: k, Info: channelCatalog[k]})
	}
	for _, k := range EmailDigests() {
		c.EmailDigests = append(c.EmailDigests, CatalogEntry[EmailDigest, DigestInfo]{Key: k, Info: digestCatalog[k]})
	}
	return c
}
