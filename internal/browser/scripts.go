package browser

import (
	"encoding/json"
	"fmt"

	"yt_digest/internal/dom"
)

// Attributes are not observed, so marking hidden nodes does not count as
// a mutation.
const observerScript = `(() => {
  if (window.__digestObserver) return true;
  window.__digestMutations = window.__digestMutations || 0;
  const attach = () => {
    window.__digestObserver = new MutationObserver(() => { window.__digestMutations++; });
    window.__digestObserver.observe(document, {childList: true, subtree: true, characterData: true});
  };
  attach();
  return true;
})()`

const counterScript = `window.__digestMutations || 0`

// Elements that the pipeline filters by visibility.
const hiddenCandidates = "button, tp-yt-paper-button, tp-yt-paper-icon-button, yt-formatted-string, ytd-button-renderer, ytd-menu-service-item-renderer"

var snapshotScript = fmt.Sprintf(`(() => {
  const attr = %[1]s;
  document.querySelectorAll('[' + attr + ']').forEach(el => el.removeAttribute(attr));
  document.querySelectorAll(%[2]s).forEach(el => {
    if (el.offsetParent === null) el.setAttribute(attr, '');
  });
  return document.documentElement.outerHTML;
})()`, jsString(dom.HiddenAttr), jsString(hiddenCandidates))

func actionScript(path, body string) string {
	return fmt.Sprintf(`(() => {
  const el = document.querySelector(%s);
  if (!el) return false;
  %s;
  return true;
})()`, jsString(path), body)
}

// jsString quotes s as a JavaScript string literal.
func jsString(s string) string {
	out, err := json.Marshal(s)
	if err != nil {
		return `""`
	}
	return string(out)
}
