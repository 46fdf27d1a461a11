package render

import "html/template"

var feedTemplate = template.Must(template.New("feed").Parse(
	`<div id="feedPosts" class="feed-posts">{{range .}}
<div class="post" data-kind="{{.Kind}}">
<div class="post-header">
<img src="{{.Avatar}}" alt="">
<div>
{{if .ProfileLink}}<a class="post-author" href="{{.ProfileLink}}">{{.Name}}</a>{{else}}<div class="post-author">{{.Name}}</div>{{end}}
<div class="post-time">{{.Time}}</div>
</div>
</div>
<div class="post-content">{{.Content}}</div>
</div>{{end}}
</div>`))

var stateTemplate = template.Must(template.New("state").Parse(
	`<div id="feedPosts" class="feed-posts">{{if .Error}}<div class="post {{.Class}}" role="alert">{{.Message}}</div>{{else}}<p class="feed-state {{.Class}}">{{.Message}}</p>{{end}}</div>`))

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Feed</title>
</head>
<body>
<main class="feed">
{{if .SessionError}}<div id="feed-session-error" class="post feed-error" role="alert">{{.SessionError}}
<a id="feedLoginRedirect" href="{{.LoginPath}}">Log in again</a>
</div>
{{else}}<div id="feed-login-overlay" class="feed-overlay"{{if not .ShowLoginCTA}} hidden{{end}}>
<p>Log in to see and share posts.</p>
<a id="feedLoginRedirect" href="{{.LoginPath}}">Log in</a>
</div>
<form id="feed-postbox" class="feed-postbox" method="post" action="/api/v1/posts"{{if not .ShowComposer}} hidden{{end}}>
<textarea id="postContent" name="content" maxlength="2000"></textarea>
<input type="hidden" name="visibility" value="{{.Tab}}">
<button id="postSubmit" type="submit">Post</button>
</form>
{{if .Notice}}<div id="feed-notice" class="feed-notice" role="alert">{{.Notice}}</div>
{{end}}<nav class="feed-tabs">
<a id="tabPublic" data-tab="public" href="/?tab=public"{{if eq .Tab "public"}} class="active"{{end}}>Public</a>
<a id="tabFriends" data-tab="friends" href="/?tab=friends"{{if eq .Tab "friends"}} class="active"{{end}}>Friends</a>
</nav>
{{.Feed}}
{{if .LiveURL}}<script>
(function () {
  var tab = {{.Tab}};
  var loading = {{.Loading}};
  var scheme = location.protocol === "https:" ? "wss://" : "ws://";
  var ws = new WebSocket(scheme + location.host + {{.LiveURL}} + "?tab=" + encodeURIComponent(tab));

  function replaceFeed(html) {
    var current = document.getElementById("feedPosts");
    if (current) {
      current.outerHTML = html;
    }
  }

  ws.onmessage = function (event) {
    var msg = JSON.parse(event.data);
    if (msg.type === "feed" && msg.html) {
      replaceFeed(msg.html);
    }
  };

  document.querySelectorAll(".feed-tabs a[data-tab]").forEach(function (link) {
    link.addEventListener("click", function (event) {
      if (ws.readyState !== WebSocket.OPEN) {
        return;
      }
      event.preventDefault();
      tab = link.dataset.tab;
      document.querySelectorAll(".feed-tabs a").forEach(function (other) {
        other.classList.toggle("active", other === link);
      });
      var visibility = document.querySelector("#feed-postbox input[name=visibility]");
      if (visibility) {
        visibility.value = tab;
      }
      history.replaceState(null, "", "/?tab=" + encodeURIComponent(tab));
      replaceFeed(loading);
      ws.send(JSON.stringify({type: "tab", tab: tab}));
    });
  });
})();
</script>
{{end}}{{end}}</main>
</body>
</html>
`))
