package intent

// The vocabulary tables below are plain data, kept apart from the classification logic so
// they can be extended without touching control flow. Multi-word entries are matched as
// substrings of the lower-cased input; single-word entries are matched against whole
// tokens.

// explicitSearchPhrases are wordings that directly ask for, or strongly imply, fresh
// information from the web.
var explicitSearchPhrases = []string{
	// direct requests
	"search for", "search the web", "search up", "search online", "web search",
	"look up", "look it up", "look online", "look for",
	"find me", "find out", "find information", "find info", "find articles",
	"can you find", "can you search", "check online", "check the web", "google",
	// temporal markers
	"latest", "newest", "current", "currently", "recent", "recently",
	"right now", "as of", "up to date", "up-to-date", "today's", "this morning",
	"just released", "just announced", "breaking", "2024", "2025",
	// comparative change
	"what changed", "what's changed", "what has changed", "has anything changed",
	"new update", "latest update", "most recent update", "latest version", "current version",
	// news and trends
	"news", "headline", "headlines", "trending", "trends", "in the news",
	"announcement", "announced", "press release", "launch", "launched",
	// status queries
	"status", "is it down", "outage", "still available", "still working",
	"still supported", "still valid", "does it still",
	// data and statistics
	"statistics", "stats", "data on", "data about", "numbers on", "figures",
	"percentage", "how many", "how much", "market share", "growth rate", "average",
	// market analysis
	"market analysis", "market size", "industry report", "forecast", "projection",
	"outlook", "competitive landscape",
	// verification
	"verify", "fact check", "fact-check", "is it true", "is this true", "confirm that",
	"source for", "citation for",
	// research
	"research on", "research about", "study", "studies", "survey", "report on",
	"white paper", "case study", "case studies",
}

// currentTopics are subject-matter words whose answers go stale quickly, spanning
// business metrics, platforms, events, performance, competition, regulation, pricing,
// technical SEO, social proof, and content marketing.
var currentTopics = []string{
	// business metrics
	"revenue", "conversion rate", "conversions", "roi", "traffic", "impressions",
	"click-through", "ctr", "bounce rate", "engagement", "leads", "lead generation",
	"sales funnel", "customer acquisition", "lifetime value",
	// technology and platforms
	"google", "bing", "yahoo", "duckduckgo", "chatgpt", "youtube", "facebook",
	"instagram", "tiktok", "linkedin", "twitter", "wordpress", "shopify", "wix",
	"squarespace", "webflow", "google analytics", "search console", "google ads",
	"google business profile", "google maps", "algorithm", "algorithm update",
	"core update", "ai overview", "ai overviews", "voice search",
	// events
	"conference", "summit", "expo", "webinar", "meetup", "convention", "trade show",
	// performance metrics
	"core web vitals", "page speed", "pagespeed", "lighthouse", "load time",
	"loading time", "mobile friendly", "mobile-friendly", "responsiveness",
	// competitive terms
	"competitor", "competitors", "competition", "market leader", "benchmark",
	"outrank", "ranking", "rankings", "serp", "search results", "position",
	"visibility",
	// regulatory terms
	"gdpr", "ccpa", "compliance", "regulation", "regulations", "privacy policy",
	"accessibility", "lawsuit", "penalty", "manual action",
	// pricing terms
	"pricing", "price", "cost", "costs", "budget", "fees", "subscription",
	"quote", "rates", "affordable", "expensive",
	// technical SEO terms
	"schema", "structured data", "sitemap", "robots.txt", "canonical", "crawl",
	"crawling", "indexing", "indexed", "redirect", "redirects", "https", "ssl",
	"hreflang", "backlink", "backlinks", "link building", "domain authority",
	"anchor text", "meta description", "meta descriptions", "meta tags",
	"title tag", "title tags", "alt text", "keyword", "keywords", "keyword density",
	"long-tail", "crawl budget", "duplicate content", "nofollow", "noindex",
	// reviews and social proof
	"reviews", "review sites", "testimonials", "ratings", "star rating", "yelp",
	"tripadvisor", "reputation", "citations", "local listings",
	// content marketing
	"content strategy", "content calendar", "blog post", "blog posts", "blogging",
	"copywriting", "evergreen content", "email marketing", "newsletter",
	"social media", "influencer", "video marketing", "podcast", "infographic",
	"guest post", "guest posting",
}

// comparisonWords signal the visitor wants options weighed against each other.
var comparisonWords = []string{
	"better", "best", "versus", "vs", "vs.", "compare", "compared", "comparison",
	"alternative", "alternatives", "difference", "differences", "pros and cons",
	"which is", "top rated", "worth it",
}

// recommendationWords signal the visitor wants actionable guidance.
var recommendationWords = []string{
	"recommend", "recommendation", "recommendations", "suggest", "suggestion",
	"suggestions", "how to", "how do i", "how can i", "what should", "strategy",
	"strategies", "tips", "advice", "best way", "best practices", "optimize",
	"improve", "boost", "increase", "grow",
}

// problemWords signal the visitor is describing something gone wrong.
var problemWords = []string{
	"problem", "problems", "issue", "issues", "error", "errors", "broken",
	"not working", "doesn't work", "stopped working", "fix", "troubleshoot",
	"dropped", "penalized", "deindexed", "lost rankings", "disappeared", "slow",
}

// implementationWords signal the visitor wants to build or set something up.
var implementationWords = []string{
	"implement", "implementation", "deploy", "install", "setup", "set up",
	"configure", "configuration", "integrate", "integration", "migrate",
	"migration", "step by step", "step-by-step", "guide", "tutorial", "walkthrough",
}

// questionWords open an interrogative sentence.
var questionWords = []string{
	"what", "who", "where", "when", "why", "how", "which", "whose", "whom",
}

// timeWords anchor a question to the present or future.
var timeWords = []string{
	"now", "today", "tonight", "current", "currently", "latest", "recent",
	"recently", "right now", "this year", "this month", "this week", "anymore",
	"still", "yet", "upcoming", "future", "soon", "shortly",
}

// entityQuestionStarts are auxiliaries that open a yes/no question about some entity.
var entityQuestionStarts = []string{
	"is", "are", "was", "were", "does", "do", "did", "can", "could", "will",
	"would", "should", "has", "have",
}

// monthNames trigger the date-pattern check.
var monthNames = []string{
	"january", "february", "march", "april", "may", "june", "july", "august",
	"september", "october", "november", "december",
}

// auditVerbs and auditTargets together make up the audit-intent vocabulary. Both a verb
// and a target must be present.
var auditVerbs = []string{
	"audit", "inspect", "analyze", "look at", "check", "review", "improve",
	"optimize", "examine",
}

var auditTargets = []string{"page", "website", "site"}
